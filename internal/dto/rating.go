package dto

// RatingResponse carries a derived entity rating. A nil rating serializes
// as JSON null, meaning no rated activity yet, which is distinct from zero.
type RatingResponse struct {
	Rating *float64 `json:"rating"`
}

// UniversityRatingResponse carries the three independent university
// rollups. The overall rating is computed from the union of all meetings
// under the university's subjects, not as a mean of subject means.
type UniversityRatingResponse struct {
	Rating         *float64 `json:"rating"`
	SubjectsRating *float64 `json:"subjects_rating"`
	TeachersRating *float64 `json:"teachers_rating"`
}
