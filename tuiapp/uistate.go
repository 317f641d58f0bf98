package tuiapp

type uiState int

const (
	loginPage   uiState = iota // shown while nobody is signed in
	mainPage                   // asteroid table with filter, sort and selection
	detailsPage                // all data of one asteroid
	comparePage                // side by side comparison of the selection
)

func (s uiState) String() string {
	switch s {
	case loginPage:
		return "login"
	case mainPage:
		return "main"
	case detailsPage:
		return "details"
	case comparePage:
		return "compare"
	default:
		return "unknown"
	}
}
