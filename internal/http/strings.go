package httpx

// Keys of the UI strings table.
const (
	StringJobsTitle = "state.TITLE"
)

var uiStrings = map[string]string{
	StringJobsTitle: "JOBS",
}

// Label returns the display string for key, or key itself when unknown.
func Label(key string) string {
	if s, ok := uiStrings[key]; ok {
		return s
	}
	return key
}
