package pan

// Mask hides all but the last four characters of a card number. Inputs
// shorter than four characters collapse to "****".
func Mask(number string) string {
	if len(number) < 4 {
		return "****"
	}
	return "**** **** **** " + number[len(number)-4:]
}
