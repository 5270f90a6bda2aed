package service

// NewGoogleAuthWithEndpoints builds a GoogleAuth against test servers.
var NewGoogleAuthWithEndpoints = newGoogleAuth

// RecordPasswordCompares counts bcrypt comparisons until the returned restore is called.
func RecordPasswordCompares() (calls func() int, restore func()) {
	original := comparePassword
	n := 0
	comparePassword = func(hash, password []byte) error {
		n++
		return original(hash, password)
	}
	return func() int { return n }, func() { comparePassword = original }
}
