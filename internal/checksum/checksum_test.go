package checksum

import "testing"

func TestSum(t *testing.T) {
	if got := Sum([]byte("")); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Sum(empty) = %s", got)
	}
	a := Sum([]byte(`{"singletonId":"run-1"}`))
	b := Sum([]byte(`{"singletonId":"run-2"}`))
	if a == b {
		t.Error("distinct payloads produced the same digest")
	}
	if a != Sum([]byte(`{"singletonId":"run-1"}`)) {
		t.Error("digest is not deterministic")
	}
}
