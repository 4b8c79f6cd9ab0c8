package emu

// NumKeys is the number of keys on the hex keypad, identified 0x0-0xF.
const NumKeys = 16

// Keypad holds the level state of the 16-key hex keypad. It is written only
// by the external input collaborator; the machine core only reads it, except
// for the key-wait instruction which observes press transitions.
type Keypad struct {
	keys [NumKeys]bool
}

// NewKeypad returns a keypad with all keys released.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Set records the level of a key. Identifiers outside 0x0-0xF are ignored;
// control actions (pause, quit, save, load) live outside this keyspace.
func (k *Keypad) Set(key uint8, down bool) {
	if key >= NumKeys {
		return
	}
	k.keys[key] = down
}

// Pressed reports whether a key is currently held.
func (k *Keypad) Pressed(key uint8) bool {
	if key >= NumKeys {
		return false
	}
	return k.keys[key]
}

// Levels returns a copy of the current key levels, used by the key-wait
// state to detect press transitions between polls.
func (k *Keypad) Levels() [NumKeys]bool {
	return k.keys
}
