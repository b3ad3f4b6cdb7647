// @title Sheet LMS 后端 API
// @version 1.0
// @description 以电子表格为存储的在线学习平台后端。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"sheet_lms_backend/internal/app"
	"sheet_lms_backend/internal/config"
	"sheet_lms_backend/pkg/logger"
)

func main() {
	// 命令行参数
	initOnly := flag.Bool("init-only", false, "只写入各表表头，完成后退出")
	initSheets := flag.Bool("init-sheets", false, "启动时写入各表表头")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.InitSheets = *initSheets || *initOnly
	cfg.InitOnly = *initOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 初始化完成后直接退出
	if cfg.InitOnly {
		logger.Log.Info("Sheets initialized, exiting")
		return
	}

	application.Run()
}
