package booking

import (
	"time"

	"github.com/ryab476/hotel-booking/storage"
)

// Overlaps reports whether the half-open date intervals [aIn, aOut) and
// [bIn, bOut) share at least one night. A checkout equal to the other stay's
// check-in does not overlap: back-to-back stays are allowed.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// HasOverlap reports whether the candidate range [checkIn, checkOut) overlaps
// any of the given bookings. Callers pass the user's active bookings only;
// cancelled ones must already be filtered out.
func HasOverlap(existing []storage.Booking, checkIn, checkOut time.Time) bool {
	for _, b := range existing {
		if Overlaps(checkIn, checkOut, b.CheckIn, b.CheckOut) {
			return true
		}
	}
	return false
}
