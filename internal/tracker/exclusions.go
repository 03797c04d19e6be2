package tracker

// DefaultExclusions returns symbols that are registered tickers but read as
// ordinary English in forum text, so matching them produces noise rather than
// signal. The validator drops them even when the registry contains them.
func DefaultExclusions() []string {
	return []string{
		"A", "ALL", "AM", "AN", "ANY", "ARE", "AT", "BE", "BIG", "BY",
		"CAN", "CEO", "DD", "DO", "EDIT", "EV", "FOR", "GO", "GOOD", "HAS",
		"HE", "HUGE", "IMO", "IT", "LOVE", "LOW", "MAN", "NEW", "NEXT", "NOW",
		"ON", "ONE", "OPEN", "OR", "OUT", "PM", "REAL", "RH", "SEE", "SO",
		"STAY", "TELL", "USA", "VERY", "WELL", "YOLO", "YOU",
	}
}
