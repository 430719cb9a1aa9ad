package shipping

// StatusMapper is a static per-provider translation table from raw provider
// status tokens to the unified set. Unknown tokens default to `created`
// (never an error); callers should log the miss.
type StatusMapper map[string]UnifiedStatus

// Map translates token, defaulting to StatusCreated for any token the
// mapper does not recognize.
func (m StatusMapper) Map(token string) (status UnifiedStatus, known bool) {
	if s, ok := m[token]; ok {
		return s, true
	}

	return StatusCreated, false
}
