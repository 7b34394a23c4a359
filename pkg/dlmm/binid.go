package dlmm

// ToUnsignedBinID converts a signed, zero-centered bin id to the
// unsigned storage index.
func ToUnsignedBinID(binID int32) (uint32, error) {
	if binID < MinBinID || binID > MaxBinID {
		return 0, ErrInvalidBinID
	}
	return uint32(binID + CenterBinID), nil
}

// ToSignedBinID converts an unsigned storage index back to the signed
// bin id.
func ToSignedBinID(unsigned uint32) (int32, error) {
	if unsigned >= NumOfBins {
		return 0, ErrInvalidBinID
	}
	return int32(unsigned) - CenterBinID, nil
}

// ValidBinID reports whether binID is inside the supported range.
func ValidBinID(binID int32) bool {
	return binID >= MinBinID && binID <= MaxBinID
}
