package hwio

// GetBiti8 returns bit n of v, as 0 or 1.
func GetBiti8(v uint8, n uint) uint8 {
	return v >> (n) & 0x01
}
