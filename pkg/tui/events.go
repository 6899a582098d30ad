package tui

import (
	"github.com/gdamore/tcell/v2"
)

// Events 读取屏幕事件，转成在主循环 goroutine 上执行的任务
//
// 任务把按键喂给 input；尺寸变化时同步屏幕并重绘；退出按键调用 quit。
// 屏幕关闭（PollEvent 返回 nil）后通道关闭。
//
// 参数:
//   - screen: 已初始化的屏幕
//   - input: 输入适配器
//   - renderer: 终端渲染器
//   - quit: 请求退出时调用
//
// 返回:
//   - <-chan func(): 交给 game.Engine.Run 的任务通道
func Events(screen tcell.Screen, input *Input, renderer *ScreenRenderer, quit func()) <-chan func() {
	jobs := make(chan func(), 100)
	go func() {
		defer close(jobs)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			jobs <- func() {
				if !input.HandleEvent(ev) {
					quit()
					return
				}
				if input.Resized() {
					screen.Sync()
					renderer.Redraw()
				}
			}
		}
	}()
	return jobs
}
