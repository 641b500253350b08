package chip8

// TimerFrequency is the rate in Hz at which the host is expected to call TickTimers.
const TimerFrequency = 60

// TickTimers decrements the delay and sound timers by one if they are not zero.
// It returns true when the sound timer expires with this tick, which is the
// audio cue for the host.
func (m *Machine) TickTimers() bool {
	if m.delayTimer > 0 {
		m.delayTimer--
	}

	if m.soundTimer == 0 {
		return false
	}
	expired := m.soundTimer == 1
	m.soundTimer--
	return expired
}
