// Package catalog holds the static keyword vocabularies used for extraction.
// The catalog is initialized once at process start and never mutated; callers
// must treat the returned slices as read-only.
package catalog

// Category is a named, ordered list of canonical keyword strings.
type Category struct {
	Name     string
	Keywords []string
}

// Skill category names. Education, job titles and certifications are kept
// separate because they feed different fields of the extracted profile.
const (
	Programming    = "programming"
	Database       = "database"
	Cloud          = "cloud"
	AIML           = "ai_ml"
	Web            = "web"
	DevOps         = "devops"
	SoftSkills     = "soft_skills"
	EducationName  = "education"
	JobTitlesName  = "job_titles"
	CertsName      = "certifications"
)

var skillCategories = []Category{
	{Name: Programming, Keywords: []string{
		"Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "Go",
		"Rust", "SQL", "Scala", "Ruby", "PHP", "Swift", "Kotlin", "SAP",
	}},
	{Name: Database, Keywords: []string{
		"MySQL", "PostgreSQL", "MongoDB", "Redis", "Cassandra", "DynamoDB",
		"Elasticsearch", "SQLite", "Oracle",
	}},
	{Name: Cloud, Keywords: []string{
		"AWS", "Azure", "GCP", "Google Cloud", "Cloud Computing", "Lambda",
		"Serverless", "EC2", "S3",
	}},
	{Name: AIML, Keywords: []string{
		"Machine Learning", "Deep Learning", "TensorFlow", "PyTorch",
		"Scikit-learn", "NLP", "Computer Vision", "Keras", "Pandas", "NumPy",
	}},
	{Name: Web, Keywords: []string{
		"React", "Angular", "Vue", "Node.js", "Django", "Flask", "Spring",
		"Express", "GraphQL", "REST", "HTML", "CSS",
	}},
	{Name: DevOps, Keywords: []string{
		"Docker", "Kubernetes", "Jenkins", "Terraform", "Ansible", "CI/CD",
		"Git", "GitHub Actions", "Linux", "Bash",
	}},
	{Name: SoftSkills, Keywords: []string{
		"Leadership", "Communication", "Teamwork", "Problem Solving",
		"Agile", "Scrum", "Project Management", "Mentoring",
	}},
}

var education = Category{Name: EducationName, Keywords: []string{
	"Bachelor", "Master", "B.Tech", "M.Tech", "PhD", "MBA", "GPA",
	"Computer Science",
}}

// Compound titles come first so nested-match deduplication keeps the most
// specific title when both a compound and its head word appear.
var jobTitles = Category{Name: JobTitlesName, Keywords: []string{
	"Software Engineer", "Data Scientist", "Data Engineer",
	"Machine Learning Engineer", "DevOps Engineer", "Product Manager",
	"Full Stack Developer", "Frontend Developer", "Backend Developer",
	"Analyst", "Engineer", "Developer", "Consultant", "Architect",
	"Manager", "Intern",
}}

var certifications = Category{Name: CertsName, Keywords: []string{
	"AWS Certified", "Google Cloud Certified", "Azure Certified", "PMP",
	"CKA", "CISSP", "HackerRank", "Coursera",
}}

// SkillCategories returns the categories whose keywords count as skills,
// in fixed iteration order.
func SkillCategories() []Category {
	return skillCategories
}

// Education returns the education marker keywords.
func Education() []string {
	return education.Keywords
}

// JobTitles returns the job title keywords, most specific first.
func JobTitles() []string {
	return jobTitles.Keywords
}

// Certifications returns the certification keywords.
func Certifications() []string {
	return certifications.Keywords
}

// Categories returns every catalog category, skills first, in fixed order.
func Categories() []Category {
	all := make([]Category, 0, len(skillCategories)+3)
	all = append(all, skillCategories...)
	all = append(all, education, jobTitles, certifications)
	return all
}
