package banner

import (
	"fmt"
	"runtime"
)

const banner = `
 __        ____  __ ____     ____                      _
 \ \      / /  \/  / ___|   / ___|___  _ __  ___  ___ | | ___
  \ \ /\ / /| |\/| \___ \  | |   / _ \| '_ \/ __|/ _ \| |/ _ \
   \ V  V / | |  | |___) | | |__| (_) | | | \__ \ (_) | |  __/
    \_/\_/  |_|  |_|____/   \____\___/|_| |_|___/\___/|_|\___|
`

// Print 打印启动横幅，包含版本信息和构建信息
func Print(version, commitHash, buildTime string) {
	fmt.Print(Render(version, commitHash, buildTime))
}

// Render 返回横幅文本
func Render(version, commitHash, buildTime string) string {
	s := banner
	s += fmt.Sprintf("  Version:     %s\n", version)

	if commitHash != "" && commitHash != "unknown" {
		// 如果 commit hash 太长，只显示前 7 位
		if len(commitHash) > 7 {
			commitHash = commitHash[:7]
		}
		s += fmt.Sprintf("  Commit:      %s\n", commitHash)
	}

	if buildTime != "" && buildTime != "unknown" {
		s += fmt.Sprintf("  Build Time:  %s\n", buildTime)
	}

	s += fmt.Sprintf("  Go Version:  %s\n", runtime.Version())
	s += fmt.Sprintf("  OS/Arch:     %s/%s\n\n", runtime.GOOS, runtime.GOARCH)
	return s
}
