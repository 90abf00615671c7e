package platform

// CameraService provides camera access.
type CameraService struct {
	// Permission for camera capture.
	Permission Permission
}

// Camera is the singleton camera service.
var Camera = &CameraService{
	Permission: newPermission("camera"),
}
