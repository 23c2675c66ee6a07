package consts

var (
	GitRepo   = "github.com/haydenhayden/projectzen"
	GitCommit = "dev"
)

const (
	AppName   = "zencal"
	ProductID = "project-zen.haydenhayden.com"
)

// UserAgent is sent on every outbound API call.
func UserAgent() string {
	return AppName + " (" + GitRepo + "@" + GitCommit + ")"
}
