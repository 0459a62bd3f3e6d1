package uart

// BaudDivider computes the mantissa and fraction of the baud rate register
// for a peripheral clocked at pclk.
//
// The fraction is the remainder of pclk/(baud*oversampling) scaled by the
// oversampling factor and rounded to the nearest integer. Rounding up to the
// factor itself carries into the mantissa.
func BaudDivider(pclk, baud uint32, ov Oversampling) (mantissa uint16, fraction uint8) {
	factor := uint32(16)
	if ov == Oversampling8 {
		factor = 8
	}

	div := float64(pclk) / float64(baud*factor)
	mantissa = uint16(div)
	fraction = uint8((div-float64(mantissa))*float64(factor) + 0.5)

	if fraction&uint8(factor) != 0 {
		mantissa++
	}
	fraction &= uint8(factor - 1)
	return mantissa, fraction
}
