package wire

import "testing"

func TestUint16RoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	PutUint16(buf, 0xABCD)
	if got := Uint16(buf); got != 0xABCD {
		t.Fatalf("Uint16(PutUint16(0xABCD)) = %#x, want 0xABCD", got)
	}
}

func TestUint32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutUint32(buf, 0xDEADBEEF)
	if got := Uint32(buf); got != 0xDEADBEEF {
		t.Fatalf("Uint32(PutUint32(0xDEADBEEF)) = %#x, want 0xDEADBEEF", got)
	}
}

func TestUint16IsLittleEndian(t *testing.T) {
	buf := []byte{0x01, 0x02}
	if got := Uint16(buf); got != 0x0201 {
		t.Fatalf("Uint16({0x01,0x02}) = %#x, want 0x0201", got)
	}
}

func TestPutNameZeroPadsShortName(t *testing.T) {
	buf := make([]byte, 12)
	PutName(buf, "log")
	for i := 3; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatalf("byte %d = %#x, want 0 padding after a short name", i, buf[i])
		}
	}
	if got := Name(buf); got != "log" {
		t.Fatalf("Name(PutName(\"log\")) = %q, want \"log\"", got)
	}
}

func TestPutNameTruncatesOversizedName(t *testing.T) {
	buf := make([]byte, 4)
	PutName(buf, "much-too-long")
	if string(buf) != "much" {
		t.Fatalf("PutName truncated to %q, want \"much\"", buf)
	}
}

func TestPutNameClearsPreviousContents(t *testing.T) {
	buf := []byte{'o', 'l', 'd', 'e', 'r', 0, 0}
	PutName(buf, "hi")
	want := []byte{'h', 'i', 0, 0, 0, 0, 0}
	if string(buf) != string(want) {
		t.Fatalf("PutName left stale bytes: got %v, want %v", buf, want)
	}
}

func TestNameWithNoZeroByteReadsWholeBuffer(t *testing.T) {
	buf := []byte{'a', 'b', 'c', 'd'}
	if got := Name(buf); got != "abcd" {
		t.Fatalf("Name(%q) = %q, want %q (a full field has no guaranteed terminator)", buf, got, "abcd")
	}
}
