package transport

var (
	Debug    = false // set to true for verbose debug output and the event log
	UseAABB  = true  // set to false to skip bounding-box culling in the surface search
	Progress = false // set to true to log run progress every ~1%
)
