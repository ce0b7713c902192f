package pedersen

import (
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
)

func TestCommitIsHomomorphic(t *testing.T) {
	x := new(secp256k1.ModNScalar).SetInt(12345)
	y := new(secp256k1.ModNScalar).SetInt(67890)

	left, err := Add(Commit(100, x), Commit(250, y))
	if err != nil {
		t.Fatalf("Add: %+v", err)
	}

	xPlusY := new(secp256k1.ModNScalar).SetInt(12345)
	xPlusY.Add(y)
	right := Commit(350, xPlusY)

	if !left.Equal(right) {
		t.Fatalf("commit(100,x)+commit(250,y) = %s, want commit(350,x+y) = %s", left, right)
	}
}

func TestCommitZeroIsZeroCommitment(t *testing.T) {
	zero := new(secp256k1.ModNScalar)
	commitment := Commit(0, zero)
	for _, b := range commitment.ByteSlice() {
		if b != 0 {
			t.Fatalf("commit(0,0) = %s, want the all-zero commitment", commitment)
		}
	}
}

func TestCommitValueMatchesZeroBlinding(t *testing.T) {
	zero := new(secp256k1.ModNScalar)
	if !CommitValue(42).Equal(Commit(42, zero)) {
		t.Fatalf("CommitValue(42) != Commit(42, 0)")
	}
}

func TestValueAndBlindingGeneratorsDiffer(t *testing.T) {
	one := new(secp256k1.ModNScalar).SetInt(1)
	blindingOnly := Commit(0, one)
	valueOnly := CommitValue(1)
	if blindingOnly.Equal(valueOnly) {
		t.Fatalf("1·G == 1·H, the generators are not independent")
	}
}

func TestSub(t *testing.T) {
	x := new(secp256k1.ModNScalar).SetInt(777)
	total := Commit(500, x)
	part := Commit(300, x)

	difference, err := Sub(total, part)
	if err != nil {
		t.Fatalf("Sub: %+v", err)
	}
	if !difference.Equal(CommitValue(200)) {
		t.Fatalf("commit(500,x)-commit(300,x) = %s, want commit(200,0) = %s",
			difference, CommitValue(200))
	}

	cancelled, err := Sub(total, total)
	if err != nil {
		t.Fatalf("Sub: %+v", err)
	}
	if !cancelled.Equal(CommitValue(0)) {
		t.Fatalf("a-a = %s, want the zero commitment", cancelled)
	}
}

func TestSum(t *testing.T) {
	empty, err := Sum()
	if err != nil {
		t.Fatalf("Sum: %+v", err)
	}
	if !empty.Equal(CommitValue(0)) {
		t.Fatalf("empty sum = %s, want the zero commitment", empty)
	}

	x := new(secp256k1.ModNScalar).SetInt(1)
	y := new(secp256k1.ModNScalar).SetInt(2)
	z := new(secp256k1.ModNScalar).SetInt(3)
	sum, err := Sum(Commit(10, x), Commit(20, y))
	if err != nil {
		t.Fatalf("Sum: %+v", err)
	}
	if !sum.Equal(Commit(30, z)) {
		t.Fatalf("commit(10,1)+commit(20,2) = %s, want commit(30,3)", sum)
	}
}

func TestZeroCommitmentRoundTrip(t *testing.T) {
	zero := &externalapi.DomainCommitment{}
	point, err := ParseCommitment(zero)
	if err != nil {
		t.Fatalf("ParseCommitment(zero): %+v", err)
	}
	if !point.Z.IsZero() {
		t.Fatalf("the zero commitment did not parse as the point at infinity")
	}
	if !SerializeCommitment(point).Equal(zero) {
		t.Fatalf("the point at infinity did not serialize back to the zero commitment")
	}
}

func TestParseCommitmentRejectsNonCurvePoints(t *testing.T) {
	var serialized [externalapi.DomainCommitmentSize]byte
	serialized[0] = 0x05
	_, err := ParseCommitment(externalapi.NewDomainCommitmentFromByteArray(&serialized))
	if err == nil {
		t.Fatalf("expected an error for a commitment with an invalid format byte")
	}
}

func TestParseScalarRejectsOverflow(t *testing.T) {
	// The group order itself is the smallest non-canonical encoding.
	groupOrder, err := externalapi.NewDomainScalarFromString(
		"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	if err != nil {
		t.Fatalf("NewDomainScalarFromString: %+v", err)
	}
	if _, err := ParseScalar(groupOrder); err == nil {
		t.Fatalf("expected an error for a scalar equal to the group order")
	} else if !strings.Contains(err.Error(), "not reduced") {
		t.Fatalf("unexpected error: %s", err)
	}

	orderMinusOne, err := externalapi.NewDomainScalarFromString(
		"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364140")
	if err != nil {
		t.Fatalf("NewDomainScalarFromString: %+v", err)
	}
	if _, err := ParseScalar(orderMinusOne); err != nil {
		t.Fatalf("ParseScalar rejected the largest canonical scalar: %+v", err)
	}
}

func TestScalarSerializationRoundTrip(t *testing.T) {
	scalar := new(secp256k1.ModNScalar).SetInt(987654321)
	serialized := SerializeScalar(scalar)
	parsed, err := ParseScalar(serialized)
	if err != nil {
		t.Fatalf("ParseScalar: %+v", err)
	}
	if !parsed.Equals(scalar) {
		t.Fatalf("scalar did not survive a serialization round trip")
	}
}

func TestScalarFromWideBytes(t *testing.T) {
	// With an all-zero high limb the wide reduction degenerates to a plain
	// 256-bit reduction.
	var wide [64]byte
	wide[63] = 17
	narrow := new(secp256k1.ModNScalar).SetInt(17)
	if !ScalarFromWideBytes(&wide).Equals(narrow) {
		t.Fatalf("wide reduction of a small digest did not match the plain scalar")
	}

	// 2^256 = 0·2^256 + 2^256 is not representable in the low limb, but
	// 1·2^256 + 0 is: the result must be 2^256 mod N, the reduction factor.
	var twoTo256 [64]byte
	twoTo256[31] = 1
	if !ScalarFromWideBytes(&twoTo256).Equals(wideReductionFactor) {
		t.Fatalf("wide reduction of 2^256 did not equal 2^256 mod N")
	}
}

func TestSecondGeneratorIsDeterministic(t *testing.T) {
	first := SerializeCommitment(deriveSecondGenerator())
	second := SerializeCommitment(deriveSecondGenerator())
	if !first.Equal(second) {
		t.Fatalf("the value generator derivation is not deterministic: %s != %s", first, second)
	}
	if !first.Equal(CommitValue(1)) {
		t.Fatalf("CommitValue(1) = %s, want the value generator %s", CommitValue(1), first)
	}
}
