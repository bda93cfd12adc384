// Package v1alpha1 defines the Filez custom resources reconciled by C7:
// StorageLocation, Application, and AccessPolicy. Cluster operators manage
// these declaratively; the reconciler keeps the database and the in-memory
// storage.Registry in sync with them.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// GroupVersion is the API group and version for all Filez custom resources.
var GroupVersion = schema.GroupVersion{Group: "filez.io", Version: "v1alpha1"}

// StorageLocationSpec mirrors models.ProviderConfig so a cluster operator
// can declare object-storage backends without touching the database
// directly.
type StorageLocationSpec struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Endpoint       string `json:"endpoint,omitempty"`
	Bucket         string `json:"bucket,omitempty"`
	Region         string `json:"region,omitempty"`
	CredentialsRef string `json:"credentialsRef,omitempty"`
	ForcePathStyle bool   `json:"forcePathStyle,omitempty"`
	RootPath       string `json:"rootPath,omitempty"`
	DataDir        string `json:"dataDir,omitempty"`
}

type StorageLocationStatus struct {
	Ready     bool   `json:"ready"`
	DatabaseID string `json:"databaseID,omitempty"`
	Message   string `json:"message,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
type StorageLocation struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   StorageLocationSpec   `json:"spec,omitempty"`
	Status StorageLocationStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true
type StorageLocationList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []StorageLocation `json:"items"`
}

type ApplicationSpec struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Trusted     bool     `json:"trusted,omitempty"`
	Origins     []string `json:"origins,omitempty"`
}

type ApplicationStatus struct {
	Ready      bool   `json:"ready"`
	DatabaseID string `json:"databaseID,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
type Application struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ApplicationSpec   `json:"spec,omitempty"`
	Status ApplicationStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true
type ApplicationList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Application `json:"items"`
}

type AccessPolicySpec struct {
	Effect          string   `json:"effect"`
	SubjectType     string   `json:"subjectType"`
	SubjectID       string   `json:"subjectID,omitempty"`
	ResourceType    string   `json:"resourceType"`
	ResourceID      string   `json:"resourceID,omitempty"`
	Actions         []string `json:"actions"`
	ContextAppNames []string `json:"contextAppNames,omitempty"`
}

type AccessPolicyStatus struct {
	Ready      bool   `json:"ready"`
	DatabaseID string `json:"databaseID,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
type AccessPolicy struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AccessPolicySpec   `json:"spec,omitempty"`
	Status AccessPolicyStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true
type AccessPolicyList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AccessPolicy `json:"items"`
}

func (in *StorageLocation) DeepCopyObject() runtime.Object {
	out := *in
	out.ObjectMeta = *in.ObjectMeta.DeepCopy()
	return &out
}

func (in *StorageLocationList) DeepCopyObject() runtime.Object {
	out := *in
	out.Items = append([]StorageLocation(nil), in.Items...)
	return &out
}

func (in *Application) DeepCopyObject() runtime.Object {
	out := *in
	out.ObjectMeta = *in.ObjectMeta.DeepCopy()
	return &out
}

func (in *ApplicationList) DeepCopyObject() runtime.Object {
	out := *in
	out.Items = append([]Application(nil), in.Items...)
	return &out
}

func (in *AccessPolicy) DeepCopyObject() runtime.Object {
	out := *in
	out.ObjectMeta = *in.ObjectMeta.DeepCopy()
	return &out
}

func (in *AccessPolicyList) DeepCopyObject() runtime.Object {
	out := *in
	out.Items = append([]AccessPolicy(nil), in.Items...)
	return &out
}
