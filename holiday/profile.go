package holiday

import (
	"context"
	"fmt"

	"github.com/haydenhayden/projectzen/domain"
)

// Profile names a set of excluded days.
type Profile struct {
	Name     string
	Weekends bool
}

var (
	// RestDays excludes weekends and public holidays.
	RestDays = Profile{Name: "rest-days", Weekends: true}
	// HolidaysOnly excludes public holidays but keeps weekends.
	HolidaysOnly = Profile{Name: "holidays", Weekends: false}
)

func ProfileByName(name string) (Profile, error) {
	switch name {
	case RestDays.Name:
		return RestDays, nil
	case HolidaysOnly.Name:
		return HolidaysOnly, nil
	}
	return Profile{}, fmt.Errorf("unknown exclusion profile %q", name)
}

// Exclusions fetches the excluded days of year for this profile.
func (p Profile) Exclusions(ctx context.Context, src Source, year int) (domain.ExclusionSet, error) {
	cal, err := src.Holidays(ctx, year, p.Weekends)
	if err != nil {
		return nil, err
	}
	return cal.Exclusions(), nil
}

func (p Profile) String() string {
	return p.Name
}
