package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

// SchemeBuilder registers the Filez custom resource types against a
// runtime.Scheme, the same pattern the teacher's operator module uses.
var (
	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}
	AddToScheme   = SchemeBuilder.AddToScheme
)

func init() {
	SchemeBuilder.Register(&StorageLocation{}, &StorageLocationList{})
	SchemeBuilder.Register(&Application{}, &ApplicationList{})
	SchemeBuilder.Register(&AccessPolicy{}, &AccessPolicyList{})
}

var _ runtime.Object = &StorageLocation{}
