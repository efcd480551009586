package categorize

import "github.com/jonathan/resource-curator/internal/types"

// domainRule classifies resources hosted on any of its domains. Subdomains
// match their parent domain. An empty Category leaves the category undecided.
type domainRule struct {
	Domains  []string
	Type     types.ResourceType
	Category types.CategoryTag
}

// keywordRule classifies resources whose title or snippet contains a keyword.
type keywordRule struct {
	Keywords []string
	Category types.CategoryTag
	Type     types.ResourceType
}

// difficultyRule maps keywords to a difficulty level.
type difficultyRule struct {
	Keywords   []string
	Difficulty types.Difficulty
}

var domainRules = []domainRule{
	{
		Domains:  []string{"youtube.com", "youtu.be", "vimeo.com"},
		Type:     types.ResourceVideo,
		Category: types.CategoryTechTutorials,
	},
	{
		Domains:  []string{"github.com", "gitlab.com", "bitbucket.org"},
		Type:     types.ResourceRepository,
		Category: types.CategorySkillDevelopment,
	},
	{
		Domains:  []string{"leetcode.com", "hackerrank.com", "codeforces.com", "codechef.com", "hackerearth.com", "exercism.org", "codewars.com"},
		Type:     types.ResourcePractice,
		Category: types.CategoryPracticeProblems,
	},
	{
		Domains:  []string{"coursera.org", "udemy.com", "edx.org", "udacity.com", "pluralsight.com", "educative.io", "khanacademy.org"},
		Type:     types.ResourceCourse,
		Category: types.CategorySkillDevelopment,
	},
	{
		Domains: []string{"medium.com", "dev.to", "geeksforgeeks.org", "freecodecamp.org", "w3schools.com", "tutorialspoint.com", "javatpoint.com", "stackoverflow.com", "baeldung.com"},
		Type:    types.ResourceArticle,
	},
}

// keywordRules are consulted in order; the first rule with a matching keyword
// decides the category. Type is only used when the domain table gave none.
var keywordRules = []keywordRule{
	{
		Keywords: []string{"interview", "faang", "maang", "hiring process", "onsite", "recruiter", "behavioral questions"},
		Category: types.CategoryInterviewPrep,
	},
	{
		Keywords: []string{"practice", "problem", "problems", "exercise", "exercises", "challenge", "challenges", "kata", "puzzle"},
		Category: types.CategoryPracticeProblems,
		Type:     types.ResourcePractice,
	},
	{
		Keywords: []string{"video", "watch", "playlist", "livestream"},
		Category: types.CategoryTechTutorials,
		Type:     types.ResourceVideo,
	},
	{
		Keywords: []string{"tutorial", "guide", "getting started", "documentation", "docs", "how to"},
		Category: types.CategoryTechTutorials,
		Type:     types.ResourceArticle,
	},
	{
		Keywords: []string{"course", "bootcamp", "specialization", "certification", "curriculum", "roadmap"},
		Category: types.CategorySkillDevelopment,
		Type:     types.ResourceCourse,
	},
	{
		Keywords: []string{"repository", "source code", "open source", "awesome list"},
		Category: types.CategorySkillDevelopment,
		Type:     types.ResourceRepository,
	},
	{
		Keywords: []string{"blog", "article", "post", "read"},
		Type:     types.ResourceArticle,
	},
}

var difficultyRules = []difficultyRule{
	{Keywords: []string{"beginner", "beginners", "introduction", "intro", "basics", "fundamentals", "for dummies", "crash course", "easy", "101"}, Difficulty: types.DifficultyBeginner},
	{Keywords: []string{"advanced", "expert", "deep dive", "internals", "hard", "mastering"}, Difficulty: types.DifficultyAdvanced},
	{Keywords: []string{"intermediate", "medium"}, Difficulty: types.DifficultyIntermediate},
}

// defaultMinutes is the estimate used when the snippet gives no duration.
var defaultMinutes = map[types.ResourceType]int{
	types.ResourceVideo:      20,
	types.ResourceArticle:    10,
	types.ResourceCourse:     600,
	types.ResourceRepository: 60,
	types.ResourcePractice:   45,
	types.ResourceOther:      15,
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "for": true, "of": true,
	"to": true, "in": true, "on": true, "with": true, "how": true, "what": true,
	"is": true, "are": true, "from": true, "by": true, "at": true, "or": true,
	"your": true, "my": true, "best": true, "learn": true, "about": true,
}
