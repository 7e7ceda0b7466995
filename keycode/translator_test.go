package keycode_test

import (
	"testing"

	"github.com/andrieee44/keyremapd/keycode"
)

func TestTranslatorRoundTrip(t *testing.T) {
	var translator *keycode.Translator

	translator = keycode.NewTranslator()

	for _, k := range translator.All() {
		var (
			code keycode.OsCode
			got  keycode.Keycode
			ok   bool
		)

		code = translator.Out(k)

		got, ok = translator.In(code)
		if !ok {
			t.Fatalf("In(Out(%s)) missing, want present", k)
		}

		if got != k {
			t.Fatalf("In(Out(%s)) = %s, want %s", k, got, k)
		}
	}
}

func TestTranslatorUnmappedCodeDropped(t *testing.T) {
	var translator *keycode.Translator

	translator = keycode.NewTranslator()

	if _, ok := translator.In(keycode.OsCode(0xffff)); ok {
		t.Fatalf("In(0xffff) = ok, want absent")
	}
}

func TestTranslatorLenMatchesAll(t *testing.T) {
	var translator *keycode.Translator

	translator = keycode.NewTranslator()

	if got, want := translator.Len(), len(translator.All()); got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
}
