// Package instagram provides a client for Instagram's internal web API,
// authenticated with browser session cookies. It covers the two endpoints
// the collection pipelines need: resolving a username to a full profile
// (web_profile_info) and paginating a user's follower list (friendships).
package instagram
