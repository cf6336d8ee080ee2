package xinput

import (
	"errors"
	"reflect"
	"testing"
)

const sampleList = "⎡ Virtual core pointer                    \tid=2\t[master pointer  (3)]\n" +
	"⎜   ↳ Virtual core XTEST pointer              \tid=4\t[slave  pointer  (2)]\n" +
	"⎜   ↳ Logitech USB Receiver                   \tid=9\t[slave  pointer  (2)]\n" +
	"⎣ Virtual core keyboard                   \tid=3\t[master keyboard (2)]\n" +
	"    ↳ Virtual core XTEST keyboard             \tid=5\t[slave  keyboard (3)]\n" +
	"⎡ CoX pointer                             \tid=16\t[master pointer  (17)]\n" +
	"⎜   ↳ CoX XTEST pointer                       \tid=18\t[slave  pointer  (16)]\n" +
	"⎣ CoX keyboard                            \tid=17\t[master keyboard (16)]\n" +
	"∼ CoX Mouse Device                        \tid=14\t[floating slave]\n"

func TestParseList(t *testing.T) {
	devices := ParseList(sampleList)
	if len(devices) != 9 {
		t.Fatalf("len(devices) = %d, want 9", len(devices))
	}

	tests := []struct {
		idx    int
		id     int
		name   string
		role   string
		paired int
	}{
		{0, 2, "Virtual core pointer", "master pointer", 3},
		{1, 4, "Virtual core XTEST pointer", "slave pointer", 2},
		{3, 3, "Virtual core keyboard", "master keyboard", 2},
		{5, 16, "CoX pointer", "master pointer", 17},
		{7, 17, "CoX keyboard", "master keyboard", 16},
		{8, 14, "CoX Mouse Device", "floating slave", 0},
	}
	for _, tt := range tests {
		d := devices[tt.idx]
		if d.ID != tt.id || d.Name != tt.name || d.Role != tt.role || d.Paired != tt.paired {
			t.Errorf("devices[%d] = {%d %q %q %d}, want {%d %q %q %d}",
				tt.idx, d.ID, d.Name, d.Role, d.Paired, tt.id, tt.name, tt.role, tt.paired)
		}
	}

	if !devices[5].IsMaster() || devices[8].IsMaster() {
		t.Error("IsMaster mismatch")
	}
}

func TestParseListSkipsNoise(t *testing.T) {
	devices := ParseList("\nwarning: something\n   \n")
	if len(devices) != 0 {
		t.Fatalf("expected no devices, got %v", devices)
	}
}

type recordingRunner struct {
	calls [][]string
	out   []byte
	err   error
}

func (r *recordingRunner) Run(args ...string) ([]byte, error) {
	r.calls = append(r.calls, args)
	return r.out, r.err
}

func TestClientVerbs(t *testing.T) {
	r := &recordingRunner{}
	c := NewClient(r)

	if err := c.CreateMaster("CoX"); err != nil {
		t.Fatal(err)
	}
	if err := c.Reattach(14, 16); err != nil {
		t.Fatal(err)
	}
	if err := c.RemoveMaster(16); err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"create-master", "CoX"},
		{"reattach", "14", "16"},
		{"remove-master", "16"},
	}
	if !reflect.DeepEqual(r.calls, want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
}

func TestClientCreateMasterRequiresName(t *testing.T) {
	c := NewClient(&recordingRunner{})
	if err := c.CreateMaster("  "); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestClientListPropagatesError(t *testing.T) {
	c := NewClient(&recordingRunner{err: errors.New("boom")})
	if _, err := c.List(); err == nil {
		t.Fatal("expected error")
	}
}
