package analysis

// Listener personas derived from the peak listening hour.
const (
	PersonaEarlyBird         = "Early Bird"
	PersonaAfternoonListener = "Afternoon Listener"
	PersonaEveningVibes      = "Evening Vibes"
	PersonaNightOwl          = "Night Owl"
)

// Persona maps a peak hour (0-23) to a categorical listener label.
func Persona(peakHour int) string {
	switch {
	case peakHour >= 6 && peakHour < 12:
		return PersonaEarlyBird
	case peakHour >= 12 && peakHour < 18:
		return PersonaAfternoonListener
	case peakHour >= 18 && peakHour < 24:
		return PersonaEveningVibes
	default:
		return PersonaNightOwl
	}
}
