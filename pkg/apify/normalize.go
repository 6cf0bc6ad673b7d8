package apify

import (
	"fmt"
	"strconv"
	"strings"

	"igfollowers/pkg/models"
)

// Field candidate lists come from configuration: each canonical field maps
// to a space-separated list of actor output keys in priority order, with
// dots descending into nested objects ("owner.username").

// lookup resolves one dotted path inside an item.
func lookup(item Item, path string) interface{} {
	parts := strings.Split(path, ".")
	var current interface{} = map[string]interface{}(item)
	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = obj[part]
		if !ok {
			return nil
		}
	}
	return current
}

// firstOf returns the first candidate key with a non-empty value.
func firstOf(item Item, candidates string) interface{} {
	for _, key := range strings.Fields(candidates) {
		v := lookup(item, key)
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val != "" {
				return val
			}
		case bool:
			if val {
				return val
			}
		case float64:
			if val != 0 {
				return val
			}
		default:
			return val
		}
	}
	return nil
}

func asString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// IDs sometimes arrive as JSON numbers
		return strconv.FormatInt(int64(val), 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

func asInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case string:
		n, _ := strconv.Atoi(val)
		return n
	default:
		return 0
	}
}

func asBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, _ := strconv.ParseBool(val)
		return b
	default:
		return false
	}
}

// NormalizeFollower maps one follower actor item onto a Profile using the
// configured candidate keys.
func NormalizeFollower(item Item, fields map[string]string) models.Profile {
	get := func(field string) interfaceValue {
		return interfaceValue{firstOf(item, fields[field])}
	}

	return models.Profile{
		Handle:         get("handle").str(),
		UserID:         get("ig_user_id").str(),
		FullName:       get("full_name").str(),
		FollowerCount:  get("follower_count").num(),
		FollowingCount: get("following_count").num(),
		IsVerified:     get("is_verified").boolean(),
		IsPrivate:      get("is_private").boolean(),
		Bio:            flattenBio(get("bio").str()),
		PostCount:      get("post_count").num(),
		ExternalURL:    get("external_url").str(),
		PicURL:         get("profile_pic_url").str(),
	}
}

// NormalizeComment maps one comment actor item onto a Comment.
func NormalizeComment(item Item, fields map[string]string) models.Comment {
	return models.Comment{
		Handle:    asString(firstOf(item, fields["handle"])),
		Text:      asString(firstOf(item, fields["text"])),
		PostShort: asString(firstOf(item, fields["post_short"])),
	}
}

// interfaceValue wraps coercion so the field mapping reads flat.
type interfaceValue struct{ v interface{} }

func (iv interfaceValue) str() string   { return asString(iv.v) }
func (iv interfaceValue) num() int      { return asInt(iv.v) }
func (iv interfaceValue) boolean() bool { return asBool(iv.v) }

// PostURLs extracts canonical post URLs from post actor items, preferring
// the shortcode and falling back to any instagram.com URL.
func PostURLs(items []Item) []string {
	var urls []string
	for _, item := range items {
		shortcode := asString(firstOf(item, "shortCode shortcode"))
		if shortcode != "" {
			urls = append(urls, fmt.Sprintf("https://www.instagram.com/p/%s/", shortcode))
			continue
		}
		u := asString(firstOf(item, "url displayUrl"))
		if strings.Contains(u, "instagram.com") {
			urls = append(urls, u)
		}
	}
	return urls
}

// ProfileFromActor converts one profile scraper item into a Profile. The
// profile actor's output is stable so this mapping is fixed, except the
// external URL, which arrives as a list of either strings or objects.
func ProfileFromActor(item Item) (models.Profile, bool) {
	username := asString(item["username"])
	if username == "" {
		return models.Profile{}, false
	}

	externalURL := ""
	if raw, ok := item["externalUrls"].([]interface{}); ok && len(raw) > 0 {
		switch first := raw[0].(type) {
		case string:
			externalURL = first
		case map[string]interface{}:
			externalURL = asString(first["url"])
		}
	}

	picURL := asString(item["profilePicUrlHD"])
	if picURL == "" {
		picURL = asString(item["profilePicUrl"])
	}

	return models.Profile{
		Handle:         username,
		UserID:         asString(item["id"]),
		FullName:       asString(item["fullName"]),
		FollowerCount:  asInt(item["followersCount"]),
		FollowingCount: asInt(item["followsCount"]),
		IsVerified:     asBool(item["verified"]),
		IsPrivate:      asBool(item["private"]),
		IsBusiness:     asBool(item["isBusinessAccount"]),
		IsProfessional: asBool(item["isProfessionalAccount"]),
		Category:       asString(item["businessCategoryName"]),
		Bio:            flattenBio(asString(item["biography"])),
		ExternalURL:    externalURL,
		PostCount:      asInt(item["postsCount"]),
		PicURL:         picURL,
	}, true
}

func flattenBio(bio string) string {
	return strings.ReplaceAll(bio, "\n", " | ")
}
