package events

import "time"

var nowFn = time.Now
