package domain

// TherapeuticArea is the closed tag set a disease is classified into.
// Mirrors the 29-value enum carried over from the original disease resolver.
type TherapeuticArea string

const (
	AreaOncology                      TherapeuticArea = "oncology"
	AreaImmunological                 TherapeuticArea = "immunological"
	AreaNeurological                  TherapeuticArea = "neurological"
	AreaCardiovascular                TherapeuticArea = "cardiovascular"
	AreaMetabolic                     TherapeuticArea = "metabolic"
	AreaInfectious                    TherapeuticArea = "infectious"
	AreaRespiratory                   TherapeuticArea = "respiratory"
	AreaGastrointestinal              TherapeuticArea = "gastrointestinal"
	AreaDermatological                TherapeuticArea = "dermatological"
	AreaRareDiseases                  TherapeuticArea = "rare_diseases"
	AreaHematological                 TherapeuticArea = "hematological"
	AreaUrological                    TherapeuticArea = "urological"
	AreaMusculoskeletal               TherapeuticArea = "musculoskeletal"
	AreaOphthalmology                 TherapeuticArea = "ophthalmology"
	AreaPsychiatric                   TherapeuticArea = "psychiatric"
	AreaEndocrinology                 TherapeuticArea = "endocrinology"
	AreaRenalNephrology               TherapeuticArea = "renal_nephrology"
	AreaHepatology                    TherapeuticArea = "hepatology"
	AreaWomenHealthObGyn              TherapeuticArea = "women_health_obgyn"
	AreaPediatrics                    TherapeuticArea = "pediatrics"
	AreaGeriatrics                    TherapeuticArea = "geriatrics"
	AreaPainPalliative                TherapeuticArea = "pain_palliative"
	AreaAllergy                       TherapeuticArea = "allergy"
	AreaAddictionSubstanceUse         TherapeuticArea = "addiction_substance_use"
	AreaTransplantationImmunosuppr    TherapeuticArea = "transplantation_immunosuppression"
	AreaDentalOralHealth              TherapeuticArea = "dental_oral_health"
	AreaOncologySupportiveCare        TherapeuticArea = "oncology_supportive_care"
	AreaToxicologyOverdose            TherapeuticArea = "toxicology_overdose"
	AreaUnknown                       TherapeuticArea = "unknown"
)

// AllTherapeuticAreas lists the closed set in declaration order; used by the
// taxonomy mapper's keyword fallback to iterate deterministically.
var AllTherapeuticAreas = []TherapeuticArea{
	AreaOncology, AreaImmunological, AreaNeurological, AreaCardiovascular, AreaMetabolic,
	AreaInfectious, AreaRespiratory, AreaGastrointestinal, AreaDermatological, AreaRareDiseases,
	AreaHematological, AreaUrological, AreaMusculoskeletal, AreaOphthalmology, AreaPsychiatric,
	AreaEndocrinology, AreaRenalNephrology, AreaHepatology, AreaWomenHealthObGyn, AreaPediatrics,
	AreaGeriatrics, AreaPainPalliative, AreaAllergy, AreaAddictionSubstanceUse,
	AreaTransplantationImmunosuppr, AreaDentalOralHealth, AreaOncologySupportiveCare,
	AreaToxicologyOverdose, AreaUnknown,
}
