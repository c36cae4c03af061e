package updater

// Bugfixes151 bumps the system to 1.5.1.
func Bugfixes151() *Step {
	return &Step{
		Version: "1.5.1",
		Title:   "Bug Fixes",
		Summary: "Bug fixes applied",
		Changelog: []string{
			"Changes in v1.5.1:",
			"- Fixed update loop issue when VERSION mismatch with GitHub release",
			"- General bug fixes and stability improvements",
		},
	}
}

// UpdateMonitorDaphne152Beta bumps the system to 1.5.2-beta.
func UpdateMonitorDaphne152Beta() *Step {
	return &Step{
		Version: "1.5.2-beta",
		Title:   "Update Monitor Daphne Support",
		Summary: "Update Monitor now uses Daphne",
		Changelog: []string{
			"CHANGES IN THIS VERSION:",
			"",
			"1. Update Monitor Daemon:",
			"   - Changed from Gunicorn SIGHUP to Daphne supervisorctl restart",
			"   - Now properly restarts Daphne ASGI server after updates",
			"   - Fixed hot-reload functionality for OTA updates",
			"",
			"2. OTA Update System:",
			"   - Added support for Gitea repositories (in addition to GitHub)",
			"   - Auto-detection of Git platform (GitHub, Gitea, GitLab)",
			"   - Configurable repository URL via UPDATE_RELEASES_URL setting",
			"   - Authentication support for private repositories",
			"",
			"3. JavaScript Fixes:",
			"   - Resolved merge conflict markers in JS files",
			"   - Fixed various UI issues",
			"",
			"NOTES:",
			"- Container rebuild required to apply Update Monitor changes",
			"- For Gitea, use: /api/v1/repos/{owner}/{repo}/releases/latest",
			"- For GitHub, use: /repos/{owner}/{repo}/releases",
		},
	}
}
