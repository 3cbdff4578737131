package syncer

// Stats counts the actions one sync pass took on one file. It is pure
// reporting data; control decisions (like whether to persist the buffer)
// are never derived from it.
type Stats struct {
	File string

	NumPullCompleted int
	NumPushCompleted int
	NumPullNew       int
	NumPushNew       int
	NumNewerLocal    int
	NumNewerRemote   int
}

// AnyChange reports whether the pass took any action worth printing.
func (s Stats) AnyChange() bool {
	return s.NumPullCompleted+s.NumPushCompleted+s.NumPullNew+
		s.NumPushNew+s.NumNewerLocal+s.NumNewerRemote > 0
}
