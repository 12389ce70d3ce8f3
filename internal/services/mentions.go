package services

import (
	"context"
	"regexp"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// Mention is one @username token found in a comment body
type Mention struct {
	RawToken string
	Username string
}

// ExtractMentions returns the distinct @mentions of text in order of first appearance
func ExtractMentions(text string) []Mention {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]Mention, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, Mention{RawToken: m[0], Username: m[1]})
	}
	return out
}

// MentionResolver maps mentions to users. Unknown usernames are dropped.
type MentionResolver struct {
	users repositories.UserRepository
}

func NewMentionResolver(users repositories.UserRepository) *MentionResolver {
	return &MentionResolver{users: users}
}

// Resolve returns the mentioned users in mention order
func (r *MentionResolver) Resolve(ctx context.Context, mentions []Mention) ([]models.User, error) {
	if len(mentions) == 0 {
		return nil, nil
	}
	names := make([]string, len(mentions))
	for i, m := range mentions {
		names[i] = m.Username
	}
	found, err := r.users.GetUsersByUsernames(ctx, names)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]models.User, len(found))
	for _, u := range found {
		byName[u.Username] = u
	}
	out := make([]models.User, 0, len(found))
	for _, m := range mentions {
		if u, ok := byName[m.Username]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
