package bloom

import (
	"testing"

	"github.com/tsfile-go/tsfile/internal/pool"
)

func TestFilterAddAndTestPositiveMembership(t *testing.T) {
	f := NewFilter(100, 0.05)
	paths := []string{"root.sg1.d1.temperature", "root.sg1.d1.status", "root.sg1.d2.humidity"}
	for _, p := range paths {
		f.Add(p)
	}
	for _, p := range paths {
		if !f.Test(p) {
			t.Fatalf("expected %q to test positive after Add", p)
		}
	}
}

func TestFilterSizeRespectsMinimal(t *testing.T) {
	f := NewFilter(1, 0.05)
	if f.Size() < minimalSize {
		t.Fatalf("size %d below minimal %d", f.Size(), minimalSize)
	}
}

func TestFilterErrorRateClamped(t *testing.T) {
	loose := NewFilter(1000, 0.5) // above max, should clamp to 0.1
	tight := NewFilter(1000, 0.0001) // below min, should clamp to 0.01

	if loose.Size() >= tight.Size() {
		t.Fatalf("expected clamped loose filter (size %d) to be smaller than clamped tight filter (size %d)", loose.Size(), tight.Size())
	}
}

func TestFilterHashCountBounded(t *testing.T) {
	f := NewFilter(1000, 0.01)
	if f.K() < 1 || f.K() > maximalHashFunctions {
		t.Fatalf("k=%d out of bounds", f.K())
	}
}

func TestFilterSerializeLayout(t *testing.T) {
	f := NewFilter(10, 0.05)
	f.Add("root.sg1.d1.temperature")

	buf := pool.NewByteBuffer(64)
	f.Serialize(buf)

	if buf.Len() == 0 {
		t.Fatal("expected non-empty serialized output")
	}
}
