package memory

// Sink is anything a program image can be written into.
type Sink interface {
	Write(address int, raw int64) error
}

// Load writes program into successive addresses of sink, starting at start.
// Loading stops at the first write that fails.
func Load(sink Sink, program []int64, start int) (err error) {
	for n, raw := range program {
		err = sink.Write(start+n, raw)
		if err != nil {
			return
		}
	}

	return
}
