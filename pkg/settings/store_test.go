package settings

import (
	"errors"
	"testing"

	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
)

type memStorage struct {
	saved   *Settings
	loadErr error
	saveErr error
	saves   int
}

func (m *memStorage) Load() (Settings, bool, error) {
	if m.loadErr != nil {
		return Settings{}, false, m.loadErr
	}
	if m.saved == nil {
		return Settings{}, false, nil
	}
	return *m.saved, true, nil
}

func (m *memStorage) Save(s Settings) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &s
	return nil
}

func TestStoreLoad(t *testing.T) {
	saved := Settings{FPS: 30, Resolution: image.P720, TargetIndex: index(1)}
	tests := []struct {
		name    string
		storage *memStorage
		want    Settings
	}{
		{name: "empty", storage: &memStorage{}, want: Default()},
		{name: "saved", storage: &memStorage{saved: &saved}, want: saved},
		{name: "broken", storage: &memStorage{loadErr: errors.New("bad json")}, want: Default()},
		{name: "invalid", storage: &memStorage{saved: &Settings{FPS: 30, Resolution: image.Resolution(99)}}, want: Default()},
		{name: "out of range fps", storage: &memStorage{saved: &Settings{FPS: 500}}, want: Settings{FPS: MaxFPS}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewStore(tt.storage, logger.Default())
			if got := st.Get(); !got.Equal(tt.want) {
				t.Errorf("Get() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	storage := &memStorage{}
	st := NewStore(storage, logger.Default())

	got, err := st.Update(Settings{FPS: 200, Resolution: image.P1080, ShowCursor: true})
	if err != nil {
		t.Fatal(err)
	}
	if got.FPS != MaxFPS {
		t.Errorf("fps = %v, want %v", got.FPS, MaxFPS)
	}
	if storage.saved == nil || storage.saved.FPS != MaxFPS {
		t.Errorf("settings were not saved")
	}

	before := st.Get()
	if _, err = st.Update(Settings{FPS: 30, Resolution: image.Resolution(42)}); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Update() err = %v, want ErrInvalidSettings", err)
	}
	if !st.Get().Equal(before) {
		t.Errorf("invalid update changed the settings: %v", st.Get())
	}
	if storage.saves != 1 {
		t.Errorf("invalid settings were saved")
	}
}

func TestStoreUpdateSaveError(t *testing.T) {
	storage := &memStorage{saveErr: errors.New("disk full")}
	st := NewStore(storage, logger.Default())

	if _, err := st.Update(Settings{FPS: 24, Resolution: image.P480}); err == nil {
		t.Fatal("expected save error")
	}
	if st.Get().FPS != 24 {
		t.Errorf("settings should stay in memory")
	}
}

func TestStoreSnapshot(t *testing.T) {
	st := NewStore(nil, logger.Default())
	snap := st.Get()
	if _, err := st.Update(Settings{FPS: 10, Resolution: image.P720}); err != nil {
		t.Fatal(err)
	}
	if snap.FPS != DefaultFPS || snap.Resolution != image.Captured {
		t.Errorf("snapshot changed after update: %v", snap)
	}
}

func TestStoreReplace(t *testing.T) {
	storage := &memStorage{}
	st := NewStore(storage, logger.Default())

	changed, err := st.Replace(Default())
	if err != nil || changed {
		t.Errorf("Replace(same) = %v, %v", changed, err)
	}
	changed, err = st.Replace(Settings{FPS: 5, Resolution: image.P480})
	if err != nil || !changed {
		t.Errorf("Replace(new) = %v, %v", changed, err)
	}
	if storage.saves != 0 {
		t.Errorf("replace should not save")
	}
}
