package components

// Swatch is one selectable colour or gradient in the theme picker.
type Swatch struct {
	Index int
	// Background is a CSS background value.
	Background string
	Selected   bool
}

// FormData seeds the home page form.
type FormData struct {
	BaseURL   string
	Compose   bool
	Name      string
	Wallet    string
	Subject   string
	Colors    []Swatch
	Gradients []Swatch
}
