package droidsdk

import (
	"path/filepath"
	"strings"
)

// TargetKind classifies a compile target by its vendor prefix.
type TargetKind int

const (
	// TargetPlatform is any unprefixed target, used verbatim as a platform id.
	TargetPlatform TargetKind = iota
	// TargetAPIExtension is a vendor add-on layered on a base platform.
	TargetAPIExtension
	// TargetPreviewExtension is a vendor preview add-on.
	TargetPreviewExtension
)

const (
	googleAPIsPrefix = "Google Inc.:Google APIs:"
	googleGDKPrefix  = "Google Inc.:Glass Development Kit Preview:"
)

func (k TargetKind) String() string {
	switch k {
	case TargetAPIExtension:
		return "api-extension"
	case TargetPreviewExtension:
		return "preview-extension"
	default:
		return "platform"
	}
}

// Component is an installable SDK package and the directory it installs to,
// relative to the SDK root.
type Component struct {
	Package string
	Dir     string
}

// Path is the component's directory under sdkRoot.
func (c Component) Path(sdkRoot string) string {
	return filepath.Join(sdkRoot, filepath.FromSlash(c.Dir))
}

// Fixed components.
var (
	PlatformTools     = Component{Package: "platform-tools", Dir: "platform-tools"}
	SupportRepository = Component{Package: "extra-android-m2repository", Dir: "extras/android/m2repository"}
	GoogleRepository  = Component{Package: "extra-google-m2repository", Dir: "extras/google/m2repository"}
)

// BuildTools is the component for one build-tools revision.
func BuildTools(revision string) Component {
	return Component{Package: "build-tools-" + revision, Dir: "build-tools/" + revision}
}

func platformComponent(id string) Component {
	return Component{Package: id, Dir: "platforms/" + id}
}

func addonComponent(id string) Component {
	return Component{Package: id, Dir: "add-ons/" + id}
}

// ClassifyTarget determines a compile target's kind and its API level suffix.
func ClassifyTarget(target string) (TargetKind, string) {
	if api, ok := strings.CutPrefix(target, googleAPIsPrefix); ok {
		return TargetAPIExtension, api
	}
	if api, ok := strings.CutPrefix(target, googleGDKPrefix); ok {
		return TargetPreviewExtension, api
	}
	return TargetPlatform, target
}

// TargetComponents lists what a compile target needs, base platform first.
func TargetComponents(target string) []Component {
	kind, api := ClassifyTarget(target)
	switch kind {
	case TargetAPIExtension:
		return []Component{
			platformComponent("android-" + api),
			addonComponent("addon-google_apis-google-" + api),
		}
	case TargetPreviewExtension:
		return []Component{addonComponent("addon-google_gdk-google-" + api)}
	default:
		return []Component{platformComponent(target)}
	}
}
