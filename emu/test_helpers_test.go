package emu

// romWords builds a ROM image from big-endian instruction words, the way
// programs are stored on disk.
func romWords(words ...uint16) []byte {
	rom := make([]byte, 0, len(words)*2)
	for _, w := range words {
		rom = append(rom, byte(w>>8), byte(w))
	}
	return rom
}

// newTestMachine creates a machine with a deterministic randomness source.
func newTestMachine(rom []byte) *Machine {
	m, err := NewMachine(rom, Config{Rand: func() byte { return 0xA5 }})
	if err != nil {
		panic(err)
	}
	return m
}

// mustStep runs n interpreter steps, panicking on any execution error so
// tests without error expectations stay compact.
func mustStep(m *Machine, n int) {
	for i := 0; i < n; i++ {
		if err := m.Step(); err != nil {
			panic(err)
		}
	}
}
