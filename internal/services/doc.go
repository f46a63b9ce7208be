// Package services implements clients for the two external collaborators:
// the Spotify Web API and the recommendation microservice.
//
// # Spotify
//
// [SpotifyService] plays two roles. As an [Authorizer] it runs the OAuth
// Authorization-Code-with-PKCE handshake and refresh grants against the
// Spotify accounts service via [oauth2]. As a [MusicService] it makes
// bearer-authenticated resource calls (profile, library seeds, playlist
// creation) with a shared [rate.Limiter] in front of every request.
//
// The client holds no per-user token state: the credential lifecycle manager
// (internal/auth) owns tokens and passes an access token into every resource
// call. A 401 from the resource API surfaces as [shared.ErrTokenExpired];
// token-endpoint rejections surface as [shared.ErrUpstreamAuth] and
// transport-level failures as [shared.ErrRefreshUnavailable], which is the
// distinction the lifecycle manager's refresh path relies on.
//
// # Recommender
//
// [RecommenderService] posts {track_ids, mood_filters} and receives
// {set_1: [...]}. The recommendation engine itself is out of scope and
// treated as a black box; unreachability surfaces as
// [shared.ErrServiceUnavailable].
package services
