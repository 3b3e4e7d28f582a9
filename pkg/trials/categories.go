package trials

// Source identifies the registry a trial was read from.
type Source string

const (
	SourceUS Source = "US"
	SourceEU Source = "EU"
)

// Registry returns the upstream registry name for the source.
func (s Source) Registry() string {
	switch s {
	case SourceUS:
		return "CLINICALTRIALS_GOV"
	case SourceEU:
		return "EUDRACT"
	default:
		return ""
	}
}

type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderAll     Gender = "ALL"
	GenderUnknown Gender = "UNKNOWN"
)

type AgeGroup string

const (
	AgeGroupFetus      AgeGroup = "FETUS"
	AgeGroupNewborn    AgeGroup = "NEWBORN"
	AgeGroupInfant     AgeGroup = "INFANT"
	AgeGroupChild      AgeGroup = "CHILD"
	AgeGroupAdolescent AgeGroup = "ADOLESCENT"
	AgeGroupAdult      AgeGroup = "ADULT"
	AgeGroupOlderAdult AgeGroup = "OLDER_ADULT"
	AgeGroupUnknown    AgeGroup = "UNKNOWN"
)

// AgeGroupOrder is the canonical ordering used when a trial carries several groups.
var AgeGroupOrder = []AgeGroup{
	AgeGroupFetus,
	AgeGroupNewborn,
	AgeGroupInfant,
	AgeGroupChild,
	AgeGroupAdolescent,
	AgeGroupAdult,
	AgeGroupOlderAdult,
	AgeGroupUnknown,
}

type StudyStatus string

const (
	StatusActiveNotRecruiting   StudyStatus = "ACTIVE_NOT_RECRUITING"
	StatusCompleted             StudyStatus = "COMPLETED"
	StatusEnrollingByInvitation StudyStatus = "ENROLLING_BY_INVITATION"
	StatusNotYetRecruiting      StudyStatus = "NOT_YET_RECRUITING"
	StatusRecruiting            StudyStatus = "RECRUITING"
	StatusUnknown               StudyStatus = "Unknown"
	StatusWithdrawn             StudyStatus = "WITHDRAWN"
	StatusWithheld              StudyStatus = "WITHHELD"
)

// statusByKey maps enumeration key names, as published by the US registry export,
// to their status value. The UNKNOWN key carries the display value "Unknown".
var statusByKey = map[string]StudyStatus{
	"ACTIVE_NOT_RECRUITING":   StatusActiveNotRecruiting,
	"COMPLETED":               StatusCompleted,
	"ENROLLING_BY_INVITATION": StatusEnrollingByInvitation,
	"NOT_YET_RECRUITING":      StatusNotYetRecruiting,
	"RECRUITING":              StatusRecruiting,
	"UNKNOWN":                 StatusUnknown,
	"WITHDRAWN":               StatusWithdrawn,
	"WITHHELD":                StatusWithheld,
}

// LookupStatusKey resolves an exact enumeration key. Matching is case-sensitive.
func LookupStatusKey(key string) (StudyStatus, bool) {
	status, ok := statusByKey[key]
	return status, ok
}
