package domain

type BootstrapData struct {
	Name     string
	Email    string
	Password string
}

// Statistics is the super-admin dashboard summary.
type Statistics struct {
	TotalAdmins        int
	TotalAlumni        int
	ActiveAlumni       int
	PendingInvitations int
	TotalPosts         int
	AlumniByDepartment map[string]int
	AlumniByBatch      map[string]int
}

// AlumniFilter narrows alumni listings. Empty fields match everything.
type AlumniFilter struct {
	Department string
	Batch      string
}
