package activity

// SportType is a leaf sport type as reported by Strava.
type SportType string

const (
	AlpineSki                     SportType = "AlpineSki"
	BackcountrySki                SportType = "BackcountrySki"
	Badminton                     SportType = "Badminton"
	Canoeing                      SportType = "Canoeing"
	Crossfit                      SportType = "Crossfit"
	EBikeRide                     SportType = "EBikeRide"
	Elliptical                    SportType = "Elliptical"
	EMountainBikeRide             SportType = "EMountainBikeRide"
	Golf                          SportType = "Golf"
	GravelRide                    SportType = "GravelRide"
	Handcycle                     SportType = "Handcycle"
	HighIntensityIntervalTraining SportType = "HighIntensityIntervalTraining"
	Hike                          SportType = "Hike"
	IceSkate                      SportType = "IceSkate"
	InlineSkate                   SportType = "InlineSkate"
	Kayaking                      SportType = "Kayaking"
	Kitesurf                      SportType = "Kitesurf"
	MountainBikeRide              SportType = "MountainBikeRide"
	NordicSki                     SportType = "NordicSki"
	Pickleball                    SportType = "Pickleball"
	Pilates                       SportType = "Pilates"
	Racquetball                   SportType = "Racquetball"
	Ride                          SportType = "Ride"
	RockClimbing                  SportType = "RockClimbing"
	RollerSki                     SportType = "RollerSki"
	Rowing                        SportType = "Rowing"
	Run                           SportType = "Run"
	Sail                          SportType = "Sail"
	Skateboard                    SportType = "Skateboard"
	Snowboard                     SportType = "Snowboard"
	Snowshoe                      SportType = "Snowshoe"
	Soccer                        SportType = "Soccer"
	Squash                        SportType = "Squash"
	StairStepper                  SportType = "StairStepper"
	StandUpPaddling               SportType = "StandUpPaddling"
	Surfing                       SportType = "Surfing"
	Swim                          SportType = "Swim"
	TableTennis                   SportType = "TableTennis"
	Tennis                        SportType = "Tennis"
	TrailRun                      SportType = "TrailRun"
	Velomobile                    SportType = "Velomobile"
	VirtualRide                   SportType = "VirtualRide"
	VirtualRow                    SportType = "VirtualRow"
	VirtualRun                    SportType = "VirtualRun"
	Walk                          SportType = "Walk"
	WeightTraining                SportType = "WeightTraining"
	Wheelchair                    SportType = "Wheelchair"
	Windsurf                      SportType = "Windsurf"
	Workout                       SportType = "Workout"
	Yoga                          SportType = "Yoga"
)

// SportTypes lists every leaf sport type in selector order.
var SportTypes = []SportType{
	AlpineSki, BackcountrySki, Badminton, Canoeing, Crossfit, EBikeRide, Elliptical,
	EMountainBikeRide, Golf, GravelRide, Handcycle, HighIntensityIntervalTraining, Hike,
	IceSkate, InlineSkate, Kayaking, Kitesurf, MountainBikeRide, NordicSki, Pickleball,
	Pilates, Racquetball, Ride, RockClimbing, RollerSki, Rowing, Run, Sail, Skateboard,
	Snowboard, Snowshoe, Soccer, Squash, StairStepper, StandUpPaddling, Surfing, Swim,
	TableTennis, Tennis, TrailRun, Velomobile, VirtualRide, VirtualRow, VirtualRun, Walk,
	WeightTraining, Wheelchair, Windsurf, Workout, Yoga,
}

// Tag is a sport type selection: either a leaf sport type or one of the
// grouping tags below.
type Tag string

const (
	TagAll           Tag = "All"
	TagAllRides      Tag = "AllRides"
	TagAllFootSports Tag = "AllFootSports"
)

// groups is the expansion table of the grouping tags. A leaf type belongs to
// at most one group.
var groups = map[Tag][]SportType{
	TagAllRides:      {EBikeRide, EMountainBikeRide, GravelRide, MountainBikeRide, Ride, VirtualRide},
	TagAllFootSports: {Hike, Run, TrailRun, VirtualRun, Walk},
}

// paced are the sport types displayed with a pace instead of a speed.
var paced = map[SportType]bool{
	Hike: true, Run: true, TrailRun: true, VirtualRun: true, Walk: true,
	NordicSki: true,
}

// Tags returns every selectable tag: the grouping tags first, then the leaves.
func Tags() []Tag {
	tags := []Tag{TagAll, TagAllRides, TagAllFootSports}
	for _, s := range SportTypes {
		tags = append(tags, Tag(s))
	}
	return tags
}

// ParseTag maps a user selection to a tag. Blank selects everything.
func ParseTag(s string) Tag {
	if s == "" {
		return TagAll
	}
	return Tag(s)
}

// IsGroup reports whether t expands to several leaf types.
func (t Tag) IsGroup() bool {
	if t == TagAll {
		return true
	}
	_, ok := groups[t]
	return ok
}

// Expand returns the leaf types selected by t. TagAll expands to every leaf.
func (t Tag) Expand() []SportType {
	if t == TagAll {
		return append([]SportType(nil), SportTypes...)
	}
	if members, ok := groups[t]; ok {
		return append([]SportType(nil), members...)
	}
	return []SportType{SportType(t)}
}

// Includes reports whether an activity of sport type s is selected by t.
func (t Tag) Includes(s SportType) bool {
	if t == TagAll {
		return true
	}
	if members, ok := groups[t]; ok {
		for _, m := range members {
			if m == s {
				return true
			}
		}
		return false
	}
	return SportType(t) == s
}

// Paced reports whether a selection of t is displayed with a pace column.
func (t Tag) Paced() bool {
	return paced[SportType(t)]
}

// Paced reports whether activities of this sport type get a pace.
func (s SportType) Paced() bool {
	return paced[s]
}

// IsRide reports whether s belongs to the ride group.
func (s SportType) IsRide() bool {
	return TagAllRides.Includes(s)
}
