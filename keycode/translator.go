package keycode

import (
	evdev "github.com/andrieee44/keyremapd/linux/input"
)

// Translator is a bidirectional, total-on-Keycode mapping between the
// engine's logical alphabet and evdev OsCodes. It satisfies
// in(out(k)) == Some(k) for every Keycode by construction: both
// directions are built from the single table below, so there is no way
// for the two maps to disagree.
type Translator struct {
	in  map[OsCode]Keycode
	out map[Keycode]OsCode
}

// table is the single source of truth for the Key Translator. Each row
// names exactly one Keycode and the one evdev code it corresponds to.
var table = [...]struct {
	keycode Keycode
	osCode  OsCode
}{
	{A, evdev.KEY_A}, {B, evdev.KEY_B}, {C, evdev.KEY_C}, {D, evdev.KEY_D},
	{E, evdev.KEY_E}, {F, evdev.KEY_F}, {G, evdev.KEY_G}, {H, evdev.KEY_H},
	{I, evdev.KEY_I}, {J, evdev.KEY_J}, {K, evdev.KEY_K}, {L, evdev.KEY_L},
	{M, evdev.KEY_M}, {N, evdev.KEY_N}, {O, evdev.KEY_O}, {P, evdev.KEY_P},
	{Q, evdev.KEY_Q}, {R, evdev.KEY_R}, {S, evdev.KEY_S}, {T, evdev.KEY_T},
	{U, evdev.KEY_U}, {V, evdev.KEY_V}, {W, evdev.KEY_W}, {X, evdev.KEY_X},
	{Y, evdev.KEY_Y}, {Z, evdev.KEY_Z},

	{N0, evdev.KEY_0}, {N1, evdev.KEY_1}, {N2, evdev.KEY_2}, {N3, evdev.KEY_3},
	{N4, evdev.KEY_4}, {N5, evdev.KEY_5}, {N6, evdev.KEY_6}, {N7, evdev.KEY_7},
	{N8, evdev.KEY_8}, {N9, evdev.KEY_9},

	{Minus, evdev.KEY_MINUS}, {Equal, evdev.KEY_EQUAL},
	{LeftBrace, evdev.KEY_LEFTBRACE}, {RightBrace, evdev.KEY_RIGHTBRACE},
	{Semicolon, evdev.KEY_SEMICOLON}, {Apostrophe, evdev.KEY_APOSTROPHE},
	{Grave, evdev.KEY_GRAVE}, {Backslash, evdev.KEY_BACKSLASH},
	{Comma, evdev.KEY_COMMA}, {Dot, evdev.KEY_DOT}, {Slash, evdev.KEY_SLASH},
	{Space, evdev.KEY_SPACE}, {Tab, evdev.KEY_TAB}, {Enter, evdev.KEY_ENTER},
	{Backspace, evdev.KEY_BACKSPACE}, {Esc, evdev.KEY_ESC},

	{F1, evdev.KEY_F1}, {F2, evdev.KEY_F2}, {F3, evdev.KEY_F3}, {F4, evdev.KEY_F4},
	{F5, evdev.KEY_F5}, {F6, evdev.KEY_F6}, {F7, evdev.KEY_F7}, {F8, evdev.KEY_F8},
	{F9, evdev.KEY_F9}, {F10, evdev.KEY_F10}, {F11, evdev.KEY_F11}, {F12, evdev.KEY_F12},
	{F13, evdev.KEY_F13}, {F14, evdev.KEY_F14}, {F15, evdev.KEY_F15}, {F16, evdev.KEY_F16},
	{F17, evdev.KEY_F17}, {F18, evdev.KEY_F18}, {F19, evdev.KEY_F19}, {F20, evdev.KEY_F20},
	{F21, evdev.KEY_F21}, {F22, evdev.KEY_F22}, {F23, evdev.KEY_F23}, {F24, evdev.KEY_F24},

	{Up, evdev.KEY_UP}, {Down, evdev.KEY_DOWN}, {Left, evdev.KEY_LEFT}, {Right, evdev.KEY_RIGHT},

	{Home, evdev.KEY_HOME}, {End, evdev.KEY_END}, {PageUp, evdev.KEY_PAGEUP},
	{PageDown, evdev.KEY_PAGEDOWN}, {Insert, evdev.KEY_INSERT}, {Delete, evdev.KEY_DELETE},

	{Kp0, evdev.KEY_KP0}, {Kp1, evdev.KEY_KP1}, {Kp2, evdev.KEY_KP2}, {Kp3, evdev.KEY_KP3},
	{Kp4, evdev.KEY_KP4}, {Kp5, evdev.KEY_KP5}, {Kp6, evdev.KEY_KP6}, {Kp7, evdev.KEY_KP7},
	{Kp8, evdev.KEY_KP8}, {Kp9, evdev.KEY_KP9}, {KpAsterisk, evdev.KEY_KPASTERISK},
	{KpMinus, evdev.KEY_KPMINUS}, {KpPlus, evdev.KEY_KPPLUS}, {KpDot, evdev.KEY_KPDOT},
	{KpSlash, evdev.KEY_KPSLASH}, {KpEnter, evdev.KEY_KPENTER}, {KpEqual, evdev.KEY_KPEQUAL},
	{KpComma, evdev.KEY_KPCOMMA},

	{LeftCtrl, evdev.KEY_LEFTCTRL}, {RightCtrl, evdev.KEY_RIGHTCTRL},
	{LeftShift, evdev.KEY_LEFTSHIFT}, {RightShift, evdev.KEY_RIGHTSHIFT},
	{LeftAlt, evdev.KEY_LEFTALT}, {RightAlt, evdev.KEY_RIGHTALT},
	{LeftSuper, evdev.KEY_LEFTMETA}, {RightSuper, evdev.KEY_RIGHTMETA},

	{CapsLock, evdev.KEY_CAPSLOCK}, {NumLock, evdev.KEY_NUMLOCK}, {ScrollLock, evdev.KEY_SCROLLLOCK},

	{Mute, evdev.KEY_MUTE}, {VolumeDown, evdev.KEY_VOLUMEDOWN}, {VolumeUp, evdev.KEY_VOLUMEUP},
	{PlayPause, evdev.KEY_PLAYPAUSE}, {NextSong, evdev.KEY_NEXTSONG},
	{PreviousSong, evdev.KEY_PREVIOUSSONG}, {StopCd, evdev.KEY_STOPCD},
	{PlayCd, evdev.KEY_PLAYCD}, {PauseCd, evdev.KEY_PAUSECD}, {Rewind, evdev.KEY_REWIND},
	{FastForward, evdev.KEY_FASTFORWARD}, {Record, evdev.KEY_RECORD}, {EjectCd, evdev.KEY_EJECTCD},

	{Power, evdev.KEY_POWER}, {Sleep, evdev.KEY_SLEEP}, {Wakeup, evdev.KEY_WAKEUP},
	{SysRq, evdev.KEY_SYSRQ}, {Print, evdev.KEY_PRINT}, {Pause, evdev.KEY_PAUSE},

	{Www, evdev.KEY_WWW}, {Mail, evdev.KEY_MAIL}, {Search, evdev.KEY_SEARCH},
	{HomePage, evdev.KEY_HOMEPAGE}, {Back, evdev.KEY_BACK}, {Forward, evdev.KEY_FORWARD},
	{Refresh, evdev.KEY_REFRESH}, {Bookmarks, evdev.KEY_BOOKMARKS},
	{Computer, evdev.KEY_COMPUTER}, {Calc, evdev.KEY_CALC},

	{Menu, evdev.KEY_MENU}, {Compose, evdev.KEY_COMPOSE},

	{Ro, evdev.KEY_RO}, {Katakana, evdev.KEY_KATAKANA}, {Hiragana, evdev.KEY_HIRAGANA},
	{Henkan, evdev.KEY_HENKAN}, {KatakanaHiragana, evdev.KEY_KATAKANAHIRAGANA},
	{Muhenkan, evdev.KEY_MUHENKAN}, {KpJpComma, evdev.KEY_KPJPCOMMA}, {Yen, evdev.KEY_YEN},
	{Hangeul, evdev.KEY_HANGEUL}, {Hanja, evdev.KEY_HANJA},
	{ZenkakuHankaku, evdev.KEY_ZENKAKUHANKAKU}, {Key102nd, evdev.KEY_102ND},
}

// NewTranslator builds a Translator from the fixed table above.
func NewTranslator() *Translator {
	var t *Translator

	t = &Translator{
		in:  make(map[OsCode]Keycode, len(table)),
		out: make(map[Keycode]OsCode, len(table)),
	}

	for _, row := range table {
		t.in[row.osCode] = row.keycode
		t.out[row.keycode] = row.osCode
	}

	return t
}

// In translates an OS-level evdev code into a logical Keycode. It
// returns false for codes outside the engine's alphabet (mouse buttons,
// unrecognized vendor codes, and so on); the caller drops such events.
func (t *Translator) In(code OsCode) (Keycode, bool) {
	var (
		k  Keycode
		ok bool
	)

	k, ok = t.in[code]

	return k, ok
}

// Out translates a Keycode into its evdev code. It is total: every
// Keycode constant in this package has a row in table, so Out never
// needs a second return value.
func (t *Translator) Out(k Keycode) OsCode {
	return t.out[k]
}

// Len reports how many Keycode/OsCode pairs the translator knows, for
// sizing virtual-device capability masks.
func (t *Translator) Len() int {
	return len(t.out)
}

// All returns every Keycode the translator knows, in table order.
func (t *Translator) All() []Keycode {
	var all []Keycode

	all = make([]Keycode, 0, len(table))
	for _, row := range table {
		all = append(all, row.keycode)
	}

	return all
}
