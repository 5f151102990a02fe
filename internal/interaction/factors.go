// Package interaction computes directional interaction strength between users
// from professional, social, content, geographic, and temporal signals.
package interaction

import (
	"math"
	"strings"
	"time"

	"github.com/Asim-Shah-2004/SIH/internal/models"
)

// Complementary skill pairs. A user skill matches a side of a pair when the
// skill is contained in the listed term, so "python" pairs with "data science"
// but a longer phrase like "python scripting" does not.
var complementarySkillPairs = [][2]string{
	{"python", "data science"},
	{"frontend", "backend"},
	{"design", "marketing"},
	{"machine learning", "software engineering"},
}

var roleKeywords = []string{
	"manager", "developer", "engineer", "lead",
	"senior", "junior", "director", "analyst",
}

// professionalProximity scores shared work and education history. Each work
// pair with the same company or a similar role adds 0.5, each education pair
// with the same institution or degree adds 0.3, capped at 1.
func professionalProximity(source, target *models.User) float64 {
	var score float64
	for _, sw := range source.WorkExperience {
		for _, tw := range target.WorkExperience {
			if (sw.Company != "" && sw.Company == tw.Company) || rolesSimilar(sw.Role, tw.Role) {
				score += 0.5
			}
		}
	}
	for _, se := range source.Education {
		for _, te := range target.Education {
			if (se.Institution != "" && se.Institution == te.Institution) ||
				(se.Degree != "" && se.Degree == te.Degree) {
				score += 0.3
			}
		}
	}
	return math.Min(score, 1.0)
}

func rolesSimilar(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	for _, kw := range roleKeywords {
		if strings.Contains(a, kw) && strings.Contains(b, kw) {
			return true
		}
	}
	return false
}

// skillResonance is the Jaccard similarity of the two skill sets plus a flat
// 0.2 bonus when any pair of skills is complementary, capped at 1.
func skillResonance(source, target *models.User) float64 {
	sourceSkills := toSet(source.Skills)
	targetSkills := toSet(target.Skills)

	intersection := 0
	for s := range sourceSkills {
		if targetSkills[s] {
			intersection++
		}
	}
	union := len(sourceSkills) + len(targetSkills) - intersection

	var similarity float64
	if union > 0 {
		similarity = float64(intersection) / float64(union)
	}

	var bonus float64
	for s := range sourceSkills {
		for t := range targetSkills {
			if skillsComplementary(s, t) {
				bonus = 0.2
				break
			}
		}
		if bonus > 0 {
			break
		}
	}
	return math.Min(similarity+bonus, 1.0)
}

func skillsComplementary(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	for _, pair := range complementarySkillPairs {
		if (strings.Contains(pair[0], a) && strings.Contains(pair[1], b)) ||
			(strings.Contains(pair[1], a) && strings.Contains(pair[0], b)) {
			return true
		}
	}
	return false
}

// socialConnectivity is shared connections over the union plus one, capped at 1.
func socialConnectivity(source, target *models.User) float64 {
	sourceConns := toSet(source.ConnectionIDs())
	targetConns := toSet(target.ConnectionIDs())

	shared := 0
	for id := range sourceConns {
		if targetConns[id] {
			shared++
		}
	}
	union := len(sourceConns) + len(targetConns) - shared
	return math.Min(float64(shared)/float64(union+1), 1.0)
}

// contentInteraction counts the target's engagements on the source's posts.
// A like is worth 0.3 and a comment 0.5, capped at 1.
func contentInteraction(sourcePosts []*models.Post, targetID string) float64 {
	var score float64
	for _, post := range sourcePosts {
		if engagedBy(post.Likes, targetID) {
			score += 0.3
		}
		if engagedBy(post.Comments, targetID) {
			score += 0.5
		}
	}
	return math.Min(score, 1.0)
}

func engagedBy(engagements []models.Engagement, actorID string) bool {
	for _, e := range engagements {
		if e.ActorID == actorID {
			return true
		}
	}
	return false
}

// geographicProximity converts the haversine distance between the two users to
// a score that decays linearly to zero at 10000 km. Missing locations score 0.
func geographicProximity(source, target *models.User) float64 {
	if source.Location == nil || target.Location == nil {
		return 0
	}
	distance := haversineKM(
		source.Location.Latitude, source.Location.Longitude,
		target.Location.Latitude, target.Location.Longitude,
	)
	return math.Max(1-distance/10000, 0)
}

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	lat1, lon1, lat2, lon2 = rad(lat1), rad(lon1), rad(lat2), rad(lon2)

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// temporalEngagement weights the target's engagements on the source's posts by
// recency, decaying linearly to zero over a year, then divides by count plus
// one so sparse histories stay low.
func temporalEngagement(sourcePosts []*models.Post, targetID string, now time.Time) float64 {
	var sum float64
	count := 0
	for _, post := range sourcePosts {
		for _, e := range post.Likes {
			if e.ActorID == targetID {
				sum += recencyWeight(e.CreatedAt, now)
				count++
			}
		}
		for _, e := range post.Comments {
			if e.ActorID == targetID {
				sum += recencyWeight(e.CreatedAt, now)
				count++
			}
		}
	}
	return sum / float64(count+1)
}

func recencyWeight(at, now time.Time) float64 {
	days := now.Sub(at).Hours() / 24
	return math.Max(1-days/365, 0)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		if s != "" {
			set[s] = true
		}
	}
	return set
}
