// Package keycode defines the engine's logical keycode alphabet and the
// bidirectional mapping between it and the Linux evdev code space.
package keycode

// Keycode is a logical key symbol in the engine's alphabet. It is
// independent of any particular OS code space so that layers, actions,
// and config files can name keys without depending on evdev numbering.
type Keycode string

// OsCode is an evdev EV_KEY code, as reported in a kernel input_event's
// Code field.
type OsCode uint16

// State is the press/release state of a key event on either side of the
// engine.
type State int

const (
	// Release indicates a key transitioning from down to up.
	Release State = iota

	// Press indicates a key transitioning from up to down.
	Press
)

// The letter row.
const (
	A Keycode = "A"
	B Keycode = "B"
	C Keycode = "C"
	D Keycode = "D"
	E Keycode = "E"
	F Keycode = "F"
	G Keycode = "G"
	H Keycode = "H"
	I Keycode = "I"
	J Keycode = "J"
	K Keycode = "K"
	L Keycode = "L"
	M Keycode = "M"
	N Keycode = "N"
	O Keycode = "O"
	P Keycode = "P"
	Q Keycode = "Q"
	R Keycode = "R"
	S Keycode = "S"
	T Keycode = "T"
	U Keycode = "U"
	V Keycode = "V"
	W Keycode = "W"
	X Keycode = "X"
	Y Keycode = "Y"
	Z Keycode = "Z"
)

// Digits.
const (
	N0 Keycode = "0"
	N1 Keycode = "1"
	N2 Keycode = "2"
	N3 Keycode = "3"
	N4 Keycode = "4"
	N5 Keycode = "5"
	N6 Keycode = "6"
	N7 Keycode = "7"
	N8 Keycode = "8"
	N9 Keycode = "9"
)

// Punctuation and whitespace.
const (
	Minus      Keycode = "MINUS"
	Equal      Keycode = "EQUAL"
	LeftBrace  Keycode = "LEFT_BRACE"
	RightBrace Keycode = "RIGHT_BRACE"
	Semicolon  Keycode = "SEMICOLON"
	Apostrophe Keycode = "APOSTROPHE"
	Grave      Keycode = "GRAVE"
	Backslash  Keycode = "BACKSLASH"
	Comma      Keycode = "COMMA"
	Dot        Keycode = "DOT"
	Slash      Keycode = "SLASH"
	Space      Keycode = "SPACE"
	Tab        Keycode = "TAB"
	Enter      Keycode = "ENTER"
	Backspace  Keycode = "BACKSPACE"
	Esc        Keycode = "ESC"
)

// Function keys.
const (
	F1  Keycode = "F1"
	F2  Keycode = "F2"
	F3  Keycode = "F3"
	F4  Keycode = "F4"
	F5  Keycode = "F5"
	F6  Keycode = "F6"
	F7  Keycode = "F7"
	F8  Keycode = "F8"
	F9  Keycode = "F9"
	F10 Keycode = "F10"
	F11 Keycode = "F11"
	F12 Keycode = "F12"
	F13 Keycode = "F13"
	F14 Keycode = "F14"
	F15 Keycode = "F15"
	F16 Keycode = "F16"
	F17 Keycode = "F17"
	F18 Keycode = "F18"
	F19 Keycode = "F19"
	F20 Keycode = "F20"
	F21 Keycode = "F21"
	F22 Keycode = "F22"
	F23 Keycode = "F23"
	F24 Keycode = "F24"
)

// Arrows.
const (
	Up    Keycode = "UP"
	Down  Keycode = "DOWN"
	Left  Keycode = "LEFT"
	Right Keycode = "RIGHT"
)

// Navigation cluster.
const (
	Home     Keycode = "HOME"
	End      Keycode = "END"
	PageUp   Keycode = "PAGE_UP"
	PageDown Keycode = "PAGE_DOWN"
	Insert   Keycode = "INSERT"
	Delete   Keycode = "DELETE"
)

// Numpad.
const (
	Kp0        Keycode = "KP_0"
	Kp1        Keycode = "KP_1"
	Kp2        Keycode = "KP_2"
	Kp3        Keycode = "KP_3"
	Kp4        Keycode = "KP_4"
	Kp5        Keycode = "KP_5"
	Kp6        Keycode = "KP_6"
	Kp7        Keycode = "KP_7"
	Kp8        Keycode = "KP_8"
	Kp9        Keycode = "KP_9"
	KpAsterisk Keycode = "KP_ASTERISK"
	KpMinus    Keycode = "KP_MINUS"
	KpPlus     Keycode = "KP_PLUS"
	KpDot      Keycode = "KP_DOT"
	KpSlash    Keycode = "KP_SLASH"
	KpEnter    Keycode = "KP_ENTER"
	KpEqual    Keycode = "KP_EQUAL"
	KpComma    Keycode = "KP_COMMA"
)

// Modifiers.
const (
	LeftCtrl   Keycode = "LEFT_CTRL"
	RightCtrl  Keycode = "RIGHT_CTRL"
	LeftShift  Keycode = "LEFT_SHIFT"
	RightShift Keycode = "RIGHT_SHIFT"
	LeftAlt    Keycode = "LEFT_ALT"
	RightAlt   Keycode = "RIGHT_ALT"
	LeftSuper  Keycode = "LEFT_SUPER"
	RightSuper Keycode = "RIGHT_SUPER"
)

// Locking keys.
const (
	CapsLock   Keycode = "CAPS_LOCK"
	NumLock    Keycode = "NUM_LOCK"
	ScrollLock Keycode = "SCROLL_LOCK"
)

// Media keys.
const (
	Mute          Keycode = "MUTE"
	VolumeDown    Keycode = "VOLUME_DOWN"
	VolumeUp      Keycode = "VOLUME_UP"
	PlayPause     Keycode = "PLAY_PAUSE"
	NextSong      Keycode = "NEXT_SONG"
	PreviousSong  Keycode = "PREVIOUS_SONG"
	StopCd        Keycode = "STOP_CD"
	PlayCd        Keycode = "PLAY_CD"
	PauseCd       Keycode = "PAUSE_CD"
	Rewind        Keycode = "REWIND"
	FastForward   Keycode = "FAST_FORWARD"
	Record        Keycode = "RECORD"
	EjectCd       Keycode = "EJECT_CD"
)

// System keys.
const (
	Power  Keycode = "POWER"
	Sleep  Keycode = "SLEEP"
	Wakeup Keycode = "WAKEUP"
	SysRq  Keycode = "SYS_RQ"
	Print  Keycode = "PRINT"
	Pause  Keycode = "PAUSE"
)

// Web / application keys.
const (
	Www       Keycode = "WWW"
	Mail      Keycode = "MAIL"
	Search    Keycode = "SEARCH"
	HomePage  Keycode = "HOME_PAGE"
	Back      Keycode = "BACK"
	Forward   Keycode = "FORWARD"
	Refresh   Keycode = "REFRESH"
	Bookmarks Keycode = "BOOKMARKS"
	Computer  Keycode = "COMPUTER"
	Calc      Keycode = "CALC"
)

// Menu / compose.
const (
	Menu    Keycode = "MENU"
	Compose Keycode = "COMPOSE"
)

// International keys.
const (
	Ro                Keycode = "RO"
	Katakana          Keycode = "KATAKANA"
	Hiragana          Keycode = "HIRAGANA"
	Henkan            Keycode = "HENKAN"
	KatakanaHiragana  Keycode = "KATAKANA_HIRAGANA"
	Muhenkan          Keycode = "MUHENKAN"
	KpJpComma         Keycode = "KP_JP_COMMA"
	Yen               Keycode = "YEN"
	Hangeul           Keycode = "HANGEUL"
	Hanja             Keycode = "HANJA"
	ZenkakuHankaku    Keycode = "ZENKAKU_HANKAKU"
	Key102nd          Keycode = "KEY_102ND"
)
