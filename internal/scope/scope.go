// Package scope derives the subset of each entity family a viewer may see.
// Every function is pure: it filters what it is given and never mutates it.
package scope

import (
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/types"
)

// ProjectsForRole: admin sees every project, a company user the projects of
// its company, a client the projects it is the client of.
func ProjectsForRole(viewer *repository.Profile, projects []*repository.Project) []*repository.Project {
	if viewer == nil {
		return []*repository.Project{}
	}
	out := make([]*repository.Project, 0, len(projects))
	for _, p := range projects {
		if canSeeProject(viewer, p) {
			out = append(out, p)
		}
	}
	return out
}

func canSeeProject(viewer *repository.Profile, p *repository.Project) bool {
	switch viewer.Role {
	case types.RoleAdmin:
		return true
	case types.RoleCompany:
		return viewer.Company() != "" && p.CompanyID == viewer.Company()
	case types.RoleClient:
		return p.ClientID != nil && *p.ClientID == viewer.ID
	default:
		return false
	}
}

// IssuesForRole keeps issues whose project is visible. Clients additionally
// keep the issues they created themselves.
func IssuesForRole(viewer *repository.Profile, projects []*repository.Project, issues []*repository.Issue) []*repository.Issue {
	if viewer == nil {
		return []*repository.Issue{}
	}
	if viewer.IsAdmin() {
		return append([]*repository.Issue{}, issues...)
	}

	visible := projectIDs(ProjectsForRole(viewer, projects))
	out := make([]*repository.Issue, 0, len(issues))
	for _, issue := range issues {
		if visible[issue.ProjectID] {
			out = append(out, issue)
			continue
		}
		if viewer.IsClient() && issue.CreatedBy != nil && *issue.CreatedBy == viewer.ID {
			out = append(out, issue)
		}
	}
	return out
}

// TeamMembersForRole returns the whole roster for admin and company viewers
// (a company only ever holds its own rows). Clients see the members assigned
// to at least one of their projects.
func TeamMembersForRole(viewer *repository.Profile, projects []*repository.Project, members []*repository.TeamMember) []*repository.TeamMember {
	if viewer == nil {
		return []*repository.TeamMember{}
	}
	switch viewer.Role {
	case types.RoleAdmin, types.RoleCompany:
		return append([]*repository.TeamMember{}, members...)
	case types.RoleClient:
		assigned := make(map[string]bool)
		for _, p := range ProjectsForRole(viewer, projects) {
			for _, id := range p.AssignedTo {
				assigned[id] = true
			}
		}
		out := make([]*repository.TeamMember, 0, len(assigned))
		for _, m := range members {
			if assigned[m.ID] {
				out = append(out, m)
			}
		}
		return out
	default:
		return []*repository.TeamMember{}
	}
}

// HistoryForRole keeps audit entries of visible projects.
func HistoryForRole(viewer *repository.Profile, projects []*repository.Project, entries []*repository.ProjectHistory) []*repository.ProjectHistory {
	if viewer == nil {
		return []*repository.ProjectHistory{}
	}
	if viewer.IsAdmin() {
		return append([]*repository.ProjectHistory{}, entries...)
	}
	visible := projectIDs(ProjectsForRole(viewer, projects))
	out := make([]*repository.ProjectHistory, 0, len(entries))
	for _, e := range entries {
		if visible[e.ProjectID] {
			out = append(out, e)
		}
	}
	return out
}

// ActiveCompanies keeps companies that are active with an active subscription.
func ActiveCompanies(companies []*repository.Company) []*repository.Company {
	out := make([]*repository.Company, 0, len(companies))
	for _, c := range companies {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	return out
}

func projectIDs(projects []*repository.Project) map[string]bool {
	ids := make(map[string]bool, len(projects))
	for _, p := range projects {
		ids[p.ID] = true
	}
	return ids
}
