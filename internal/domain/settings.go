package domain

func DefaultSettings() Settings {
	return Settings{
		UPINumber:            DefaultUPINumber,
		AdvanceAmountPerHead: DefaultAdvancePerHead,
	}
}

// Effective fills the receiving account when it is blank. A stored advance
// of zero is kept.
func (s *Settings) Effective() Settings {
	if s == nil {
		return DefaultSettings()
	}
	out := *s
	if out.UPINumber == "" {
		out.UPINumber = DefaultUPINumber
	}
	return out
}

func (s Settings) Validate() error {
	verr := NewValidationError()
	if s.AdvanceAmountPerHead < 0 {
		verr.Add("advance_amount_per_head", "must not be negative")
	}
	return verr.OrNil()
}

// Public strips fields that only admins manage.
func (s Settings) Public() Settings {
	s.WhatsAppAPIKey = ""
	return s
}
