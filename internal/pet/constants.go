package pet

// Game constants
const (
	DefaultPetName = "Rex"
	MaxStat        = 100
	MinStat        = 0
	MaxNameLength  = 12
	StageAdult     = "adult"
	GenderMale     = "male"

	// Starting stats for a new pet
	DefaultHunger    = 80
	DefaultHappiness = 70
	DefaultHealth    = 90
	DefaultEnergy    = 85
	DefaultHygiene   = 90

	// Stat change rates (per hour)
	HungerDecayRate    = 3.0
	HappinessDecayRate = 2.0
	HygieneDecayRate   = 1.5
	EnergyDecayRate    = 2.0
	EnergyRecoveryRate = 10.0

	// Health nudges applied when decay runs
	CriticalStatThreshold = 20 // hunger or hygiene below this hurts health
	HealthPenalty         = 2
	ThrivingHappiness     = 70 // happiness above this and...
	ThrivingHunger        = 50 // ...hunger above this heal
	HealthRecovery        = 1

	// Action effects
	DefaultFeedAmount      = 25
	DefaultFeedName        = "Regular Food"
	DefaultPlayAmount      = 20
	DefaultPlayName        = "Playtime"
	FeedHealthIncrease     = 2
	PlayEnergyDecrease     = 10
	PetHappinessIncrease   = 8
	PetHealthIncrease      = 1
	CleanHappinessIncrease = 5
	MedicineEffect         = 30

	// Memory bounds
	MaxInteractions   = 100
	MaxConversations  = 50
	MaxFavoriteThings = 10
	RecentWindow      = 20 // interactions considered by the relationship score

	// Mood thresholds
	HungryMoodThreshold = 20
	HighStatThreshold   = 80
	LowStatThreshold    = 20
)
