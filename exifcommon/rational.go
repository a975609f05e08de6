package exifcommon

// Rational describes an unsigned rational value.
type Rational struct {
    // Numerator is the numerator of the rational value.
    Numerator uint32

    // Denominator is the denominator of the rational value.
    Denominator uint32
}

// SignedRational describes a signed rational value.
type SignedRational struct {
    // Numerator is the numerator of the rational value.
    Numerator int32

    // Denominator is the denominator of the rational value.
    Denominator int32
}
