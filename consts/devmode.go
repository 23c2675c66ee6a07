package consts

import "strings"

// devmode can be set at link time with -ldflags "-X .../consts.devmode=true"
var devmode string = "false"

func IsDevMode() bool {
	return strings.ToLower(devmode) == "true"
}

// SetDevMode overrides the link-time value. Called once at startup.
func SetDevMode(on bool) {
	if on {
		devmode = "true"
	} else {
		devmode = "false"
	}
}
