package thread

import (
	"errors"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	code := 0
	Wrap(func() { code = m.Run() })
	os.Exit(code)
}

func TestMainThread(t *testing.T) {
	value := 0
	Main(func() { value = 1 })
	if value != 1 {
		t.Errorf("wrong value %v", value)
	}
}

func TestMainThreadErr(t *testing.T) {
	boom := errors.New("boom")
	if err := MainErr(func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("wrong error %v", err)
	}
}
