package interactions

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/agentstation/coursemap/pkg/constants"
)

// IDList is an ordered, duplicate-free list of course ids.
type IDList struct {
	Items []string `json:"items"`
}

func (l *IDList) add(id string) bool {
	if slices.Contains(l.Items, id) {
		return false
	}
	l.Items = append(l.Items, id)
	return true
}

func (l *IDList) remove(id string) bool {
	i := slices.Index(l.Items, id)
	if i < 0 {
		return false
	}
	l.Items = slices.Delete(l.Items, i, i+1)
	return true
}

// Enrollment maps user ids to enrolled course ids.
type Enrollment struct {
	ByUser map[string][]string `json:"byUser"`
}

// Rating is one user's rating of a course.
type Rating struct {
	UserID    string  `json:"userId" yaml:"userId"`
	Rating    float64 `json:"rating" yaml:"rating"`
	Comment   string  `json:"comment" yaml:"comment"`
	CreatedAt string  `json:"createdAt" yaml:"createdAt"`
}

// Ratings maps course ids to at most one rating per user.
type Ratings struct {
	ByCourse map[string][]Rating `json:"ratingsByCourse"`
}

// State is the persisted interaction tree.
type State struct {
	Wishlist   IDList     `json:"wishlist"`
	Favorites  IDList     `json:"favorites"`
	Cart       IDList     `json:"cart"`
	Enrollment Enrollment `json:"enrollment"`
	Ratings    Ratings    `json:"ratings"`
}

func newState() State {
	return State{
		Wishlist:   IDList{Items: []string{}},
		Favorites:  IDList{Items: []string{}},
		Cart:       IDList{Items: []string{}},
		Enrollment: Enrollment{ByUser: map[string][]string{}},
		Ratings:    Ratings{ByCourse: map[string][]Rating{}},
	}
}

// normalize repairs a decoded state: nil containers become empty and
// duplicate ids are dropped, keeping first occurrence.
func (s *State) normalize() {
	for _, l := range []*IDList{&s.Wishlist, &s.Favorites, &s.Cart} {
		l.Items = dedupe(l.Items)
	}
	if s.Enrollment.ByUser == nil {
		s.Enrollment.ByUser = map[string][]string{}
	}
	for user, ids := range s.Enrollment.ByUser {
		s.Enrollment.ByUser[user] = dedupe(ids)
	}
	if s.Ratings.ByCourse == nil {
		s.Ratings.ByCourse = map[string][]Rating{}
	}
}

func (s State) clone() State {
	var out State
	b, _ := json.Marshal(s)
	_ = json.Unmarshal(b, &out)
	out.normalize()
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// ClampRating bounds a rating to [1,5]. Non-finite input counts as 1.
func ClampRating(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return constants.MinRating
	}
	return math.Max(constants.MinRating, math.Min(constants.MaxRating, r))
}

// roundOne rounds to one decimal place.
func roundOne(f float64) float64 {
	return math.Round(f*10) / 10
}
