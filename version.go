package smartptr

// Version information for the ownership runtime.
const (
	// Version is the current version of the library.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about the library.
type Info struct {
	// Version is the library version string.
	Version string

	// Model names the ownership model enforced.
	Model string

	// TrackingLive indicates whether live-handle tracking is active.
	TrackingLive bool
}

// GetInfo returns information about the ownership runtime.
//
// Example:
//
//	info := smartptr.GetInfo()
//	fmt.Printf("smartptr %s (%s)\n", info.Version, info.Model)
func GetInfo() Info {
	return Info{
		Version:      Version,
		Model:        "runtime-checked ownership",
		TrackingLive: TrackingLive(),
	}
}
