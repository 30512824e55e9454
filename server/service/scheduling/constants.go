package scheduling

const (
	// DefaultOccurrences is used when a one-off schedule request omits the
	// occurrence count.
	DefaultOccurrences = 1

	// MaxOccurrences bounds the count a recurring schedule request may ask
	// for, matching the admin console's input limit.
	MaxOccurrences = 365
)
