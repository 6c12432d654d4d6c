package i18n

// builtinTranslations are the compiled-in tables. File-based tables loaded
// at startup are layered on top and win on conflict.
func builtinTranslations() map[Language]map[string]string {
	return map[Language]map[string]string{
		English: {
			"menu_file":            "File",
			"menu_operation":       "Operation",
			"menu_language":        "Language",
			"menu_help":            "Help",
			"menu_takeover_nginx":  "Takeover Nginx",
			"menu_startup_on_boot": "Startup on Boot",
			"menu_new_proxy":       "New Proxy",
			"menu_new_php":         "New PHP",
			"menu_new_static":      "New Static",
			"menu_exit":            "Exit",
			"menu_start_nginx":     "Start Nginx",
			"menu_stop_nginx":      "Stop Nginx",
			"menu_reload_config":   "Reload Config",
			"menu_refresh_sites":   "Refresh Sites",
			"menu_test_config":     "Test Config",
			"menu_backup_config":   "Backup Config",
			"menu_english":         "English",
			"menu_chinese":         "Chinese",
			"menu_about":           "About",
			"site_list_site":       "Site",
			"site_list_type":       "Type",
			"site_list_port":       "Port",
			"site_list_domain":     "Domain",
			"site_list_https":      "HTTPS",
			"site_list_edit":       "Edit",
			"site_list_delete":     "Delete",
			"status_nginx_stopped": "Nginx: Stopped",
			"status_nginx_running": "Nginx: Running",
			"status_sites":         "Sites: Total {total}, Static {static}, PHP {php}, Proxy {proxy}",
			"about_title":          "About",
			"about_app_name":       "easyNginx",
			"about_version":        "Version 1.0.0",
			"about_description":    "A simple Nginx management tool",
			"about_ok":             "OK",
		},
		ChineseSimplified: {
			"menu_file":            "文件",
			"menu_operation":       "操作",
			"menu_language":        "语言",
			"menu_help":            "帮助",
			"menu_takeover_nginx":  "接管 Nginx",
			"menu_startup_on_boot": "开机启动",
			"menu_new_proxy":       "新建代理",
			"menu_new_php":         "新建 PHP",
			"menu_new_static":      "新建静态",
			"menu_exit":            "退出",
			"menu_start_nginx":     "启动 Nginx",
			"menu_stop_nginx":      "停止 Nginx",
			"menu_reload_config":   "重载配置",
			"menu_refresh_sites":   "刷新站点",
			"menu_test_config":     "测试配置",
			"menu_backup_config":   "备份配置",
			"menu_english":         "English",
			"menu_chinese":         "中文",
			"menu_about":           "关于",
			"site_list_site":       "站点",
			"site_list_type":       "类型",
			"site_list_port":       "端口",
			"site_list_domain":     "域名",
			"site_list_https":      "HTTPS",
			"site_list_edit":       "编辑",
			"site_list_delete":     "删除",
			"status_nginx_stopped": "Nginx: 已停止",
			"status_nginx_running": "Nginx: 运行中",
			"status_sites":         "站点: 总计 {total}, 静态 {static}, PHP {php}, 代理 {proxy}",
			"about_title":          "关于",
			"about_app_name":       "easyNginx",
			"about_version":        "版本 1.0.0",
			"about_description":    "简单的 Nginx 管理工具",
			"about_ok":             "确定",
		},
	}
}
