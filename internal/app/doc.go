// Package app is the composition root for shutter.
//
// Run loads configuration (config.Load) and preferences (prefs.Load), opens
// the log file, builds one photoapi.Client serving as both searcher and
// uploader, and hands everything to ui.Run with a real clock for
// notification expiry. It blocks until the user quits or the context is
// cancelled by a signal; cancellation is reported as a clean exit.
//
// The file picker starts in the directory given on the command line, else
// the last directory a photo was chosen from, else the working directory.
package app
