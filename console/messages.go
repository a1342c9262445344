package console

type loginDoneMsg struct {
	err error
}

type pageLoadedMsg struct {
	resource string
	result   *ListResult
	err      error
}

// actionDoneMsg reports a row action (toggle, delete, feature, status).
type actionDoneMsg struct {
	resource string
	id       string
	message  string
	err      error
}

type savedMsg struct {
	message string
	err     error
}

type sentMsg struct {
	message string
	err     error
}

// debounceMsg fires after the debounce delay; stale sequence numbers are ignored.
type debounceMsg struct {
	seq int
}

type backMsg struct{}

type bannerTickMsg struct{}
