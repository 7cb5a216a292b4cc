// Package taxonomy implements the Therapeutic-Area Mapper (§4.4):
// classifies a disease into one of a closed tag set via MeSH tree codes,
// ontology ancestors, and keyword fallback, in that priority order.
package taxonomy

import (
	"strings"

	"github.com/repurposectl/repurposectl/internal/domain"
)

// meshRootPriority resolves ambiguity when a MeSH tree number matches more
// than one tag's root prefix. Lower number = higher priority. Resolves the
// Open Question in §9: every root-letter collision the original
// source encodes is given an explicit priority rather than alphabetical
// fallback (DESIGN.md Open Question decision #3).
var meshRootPriority = map[string]int{
	"C04": 0,  // oncology outranks most
	"C15": 1,  // hematological outranks metabolic
	"C01": 2,  // infectious outranks immunological
	"C02": 2,  // infectious outranks immunological
	"C20": 3,  // immunological
	"C18": 4,  // metabolic
	"C10": 5,  // neurological
	"C14": 6,  // cardiovascular
	"C08": 7,  // respiratory
	"C06": 8,  // gastrointestinal
	"C17": 9,  // dermatological
	"C16": 10, // rare/congenital
	"C12": 11, // urological
	"C05": 12, // musculoskeletal
	"C11": 13, // ophthalmology
	"F03":  14, // psychiatric
	"C19": 15, // endocrinology
	"C13": 16, // renal/nephrology (urogenital)
	"C23": 17, // general pathology / overdose-adjacent, treated as toxicology
	"C25": 18, // chemically-induced disorders -> toxicology/overdose
}

var meshRootTag = map[string]domain.TherapeuticArea{
	"C04": domain.AreaOncology,
	"C15": domain.AreaHematological,
	"C01": domain.AreaInfectious,
	"C02": domain.AreaInfectious,
	"C20": domain.AreaImmunological,
	"C18": domain.AreaMetabolic,
	"C10": domain.AreaNeurological,
	"C14": domain.AreaCardiovascular,
	"C08": domain.AreaRespiratory,
	"C06": domain.AreaGastrointestinal,
	"C17": domain.AreaDermatological,
	"C16": domain.AreaRareDiseases,
	"C12": domain.AreaUrological,
	"C05": domain.AreaMusculoskeletal,
	"C11": domain.AreaOphthalmology,
	"F03": domain.AreaPsychiatric,
	"C19": domain.AreaEndocrinology,
	"C13": domain.AreaRenalNephrology,
	"C23": domain.AreaToxicologyOverdose,
	"C25": domain.AreaToxicologyOverdose,
}

// FromMeSHTreeNumbers classifies via MeSH tree lookup, applying the
// explicit priority table to resolve ambiguity when multiple tree numbers
// map to different tags.
func FromMeSHTreeNumbers(treeNumbers []string) (domain.TherapeuticArea, bool) {
	bestPriority := -1
	var best domain.TherapeuticArea
	found := false
	for _, tn := range treeNumbers {
		root := tn
		if len(root) > 3 {
			root = root[:3]
		}
		tag, ok := meshRootTag[root]
		if !ok {
			continue
		}
		priority := meshRootPriority[root]
		if !found || priority < bestPriority {
			best = tag
			bestPriority = priority
			found = true
		}
	}
	return best, found
}

// ancestorIRIKeywords is a per-tag keyword list checked against ontology
// ancestor labels/IRIs (§4.4 step 2).
var ancestorIRIKeywords = map[domain.TherapeuticArea][]string{
	domain.AreaOncology:                   {"neoplasm", "cancer", "carcinoma", "tumor"},
	domain.AreaImmunological:              {"immune system disease", "autoimmune"},
	domain.AreaNeurological:               {"nervous system disease", "neurodegenerative"},
	domain.AreaCardiovascular:             {"cardiovascular disease", "heart disease"},
	domain.AreaMetabolic:                  {"metabolic disease", "inherited metabolic disorder"},
	domain.AreaInfectious:                 {"infectious disease", "viral infectious disease", "bacterial infectious disease"},
	domain.AreaRespiratory:                {"respiratory system disease", "lung disease"},
	domain.AreaGastrointestinal:           {"gastrointestinal system disease"},
	domain.AreaDermatological:             {"skin disease"},
	domain.AreaRareDiseases:               {"rare disease", "orphan disease"},
	domain.AreaHematological:              {"hematologic disease", "blood disease"},
	domain.AreaUrological:                 {"urinary system disease"},
	domain.AreaMusculoskeletal:            {"musculoskeletal system disease"},
	domain.AreaOphthalmology:              {"eye disease"},
	domain.AreaPsychiatric:                {"mental health disease", "psychiatric disorder"},
	domain.AreaEndocrinology:              {"endocrine system disease"},
	domain.AreaRenalNephrology:            {"kidney disease", "renal disease"},
	domain.AreaHepatology:                 {"liver disease", "hepatic disease"},
	domain.AreaWomenHealthObGyn:           {"female reproductive system disease"},
	domain.AreaPediatrics:                 {"pediatric disease"},
	domain.AreaGeriatrics:                 {"geriatric disease"},
	domain.AreaPainPalliative:             {"pain"},
	domain.AreaAllergy:                    {"hypersensitivity reaction disease", "allergy"},
	domain.AreaAddictionSubstanceUse:      {"substance-related disorder", "addiction"},
	domain.AreaTransplantationImmunosuppr: {"graft-versus-host disease", "transplant rejection"},
	domain.AreaDentalOralHealth:           {"tooth disease", "oral cavity disease"},
	domain.AreaOncologySupportiveCare:     {"cancer-related condition"},
	domain.AreaToxicologyOverdose:         {"poisoning", "chemically-induced disorder"},
}

// FromOntologyAncestors classifies via ontology ancestor-label membership.
func FromOntologyAncestors(ancestors []string) (domain.TherapeuticArea, bool) {
	lowered := make([]string, len(ancestors))
	for i, a := range ancestors {
		lowered[i] = strings.ToLower(a)
	}
	for _, tag := range domain.AllTherapeuticAreas {
		for _, kw := range ancestorIRIKeywords[tag] {
			for _, a := range lowered {
				if strings.Contains(a, kw) {
					return tag, true
				}
			}
		}
	}
	return domain.AreaUnknown, false
}

// keywordPatterns is the per-tag keyword list used by the final fallback
// (§4.4 step 3): highest keyword-occurrence count wins.
var keywordPatterns = map[domain.TherapeuticArea][]string{
	domain.AreaOncology:                   {"cancer", "carcinoma", "tumor", "tumour", "neoplasm", "malignancy", "leukemia", "lymphoma", "sarcoma"},
	domain.AreaImmunological:              {"autoimmune", "autoinflammatory", "immune", "lupus", "arthritis"},
	domain.AreaNeurological:               {"alzheimer", "parkinson", "neuro", "epilepsy", "seizure", "dementia", "sclerosis"},
	domain.AreaCardiovascular:             {"cardiac", "heart", "cardiovascular", "hypertension", "atherosclerosis"},
	domain.AreaMetabolic:                  {"diabetes", "metabolic", "obesity", "dyslipidemia"},
	domain.AreaInfectious:                 {"infection", "viral", "bacterial", "sepsis", "tuberculosis", "hiv", "malaria"},
	domain.AreaRespiratory:                {"asthma", "copd", "pulmonary", "respiratory", "lung"},
	domain.AreaGastrointestinal:           {"gastro", "bowel", "crohn", "colitis", "ulcer"},
	domain.AreaDermatological:             {"psoriasis", "eczema", "dermatitis", "skin"},
	domain.AreaRareDiseases:               {"rare", "orphan", "syndrome"},
	domain.AreaHematological:              {"anemia", "anaemia", "thrombo", "hemophilia", "blood"},
	domain.AreaUrological:                 {"bladder", "prostate", "urinary"},
	domain.AreaMusculoskeletal:            {"osteoporosis", "musculoskeletal", "bone", "joint"},
	domain.AreaOphthalmology:              {"retina", "glaucoma", "macular", "eye"},
	domain.AreaPsychiatric:                {"depression", "schizophrenia", "anxiety", "bipolar", "psychiatric"},
	domain.AreaEndocrinology:              {"thyroid", "endocrine", "hormone"},
	domain.AreaRenalNephrology:            {"renal", "kidney", "nephro"},
	domain.AreaHepatology:                 {"liver", "hepatic", "cirrhosis", "hepatitis"},
	domain.AreaWomenHealthObGyn:           {"pregnancy", "ovarian", "endometriosis", "obstetric", "gynecologic"},
	domain.AreaPediatrics:                 {"pediatric", "paediatric", "childhood"},
	domain.AreaGeriatrics:                 {"geriatric", "elderly", "aging"},
	domain.AreaPainPalliative:             {"pain", "palliative"},
	domain.AreaAllergy:                    {"allergy", "allergic", "hypersensitivity"},
	domain.AreaAddictionSubstanceUse:      {"addiction", "substance use", "alcoholism", "opioid use"},
	domain.AreaTransplantationImmunosuppr: {"transplant", "graft", "rejection"},
	domain.AreaDentalOralHealth:           {"dental", "oral", "periodontal"},
	domain.AreaOncologySupportiveCare:     {"chemotherapy-induced", "cancer-related"},
	domain.AreaToxicologyOverdose:         {"overdose", "poisoning", "toxicity"},
}

// FromKeywords classifies via keyword count over the normalized disease
// name: highest count wins; ties resolved by declaration order in
// domain.AllTherapeuticAreas.
func FromKeywords(name string) domain.TherapeuticArea {
	lowered := strings.ToLower(name)
	bestCount := 0
	best := domain.AreaUnknown
	for _, tag := range domain.AllTherapeuticAreas {
		count := 0
		for _, kw := range keywordPatterns[tag] {
			count += strings.Count(lowered, kw)
		}
		if count > bestCount {
			bestCount = count
			best = tag
		}
	}
	return best
}

// Classify runs the full priority chain: MeSH tree -> ontology ancestors ->
// keyword fallback. First non-empty wins.
func Classify(diseaseName string, meshTreeNumbers, ontologyAncestors []string) domain.TherapeuticArea {
	if tag, ok := FromMeSHTreeNumbers(meshTreeNumbers); ok {
		return tag
	}
	if tag, ok := FromOntologyAncestors(ontologyAncestors); ok {
		return tag
	}
	return FromKeywords(diseaseName)
}
