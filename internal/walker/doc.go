// Package walker enumerates an ES-DE ROM tree and dispatches every file to
// the matching converter.
//
// Two passes run in order. The gamelist pass copies each gamelist.xml to
// <output>/gamelists/<relative dir>/. The media pass finds directories named
// "media", treats the parent directory name as the system, and mirrors each
// subfolder under <output>/downloaded_media/<system>/. Jobs run one at a
// time; failures are counted and never stop the walk.
package walker
