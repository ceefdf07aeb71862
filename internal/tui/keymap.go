package tui

// Key bindings handled in Update
const (
	KeyStart     = "r"
	KeyPause     = "p"
	KeyStop      = "s"
	KeyInterrupt = "i"
	KeyQuit      = "q"
	KeyCtrlC     = "ctrl+c"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyJ         = "j"
	KeyK         = "k"
	KeyFollow    = "G"
)
