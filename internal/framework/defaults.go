package framework

// NewDefaultRegistry returns a registry with every built-in framework.
// launcherDir holds the Python launcher scripts; empty means DefaultLauncherDir.
func NewDefaultRegistry(launcherDir string) *Registry {
	r := NewRegistry()

	r.MustRegister("OpenVINO DLDT", LauncherWrapper{Script: "inference_sync_mode.py", Dir: launcherDir})
	r.MustRegister("ONNX Runtime Python", LauncherWrapper{Script: "inference_onnx_runtime.py", Dir: launcherDir})
	r.MustRegister("PyTorch", LauncherWrapper{Script: "inference_pytorch.py", Dir: launcherDir})
	r.MustRegister("TensorFlow", LauncherWrapper{Script: "inference_tensorflow.py", Dir: launcherDir})
	r.MustRegister("TensorFlowLite", LauncherWrapper{Script: "inference_tensorflowlite.py", Dir: launcherDir})
	r.MustRegister("MXNet", LauncherWrapper{Script: "inference_mxnet_sync_mode.py", Dir: launcherDir})
	r.MustRegister("OpenCV DNN Python", LauncherWrapper{Script: "inference_opencv.py", Dir: launcherDir})
	r.MustRegister("Caffe", LauncherWrapper{Script: "inference_caffe.py", Dir: launcherDir})

	r.MustRegister("OpenVINO_C++ benchmark", BinaryWrapper{Binary: "benchmark_app"})
	r.MustRegister("ONNX Runtime", BinaryWrapper{Binary: "onnxruntime_benchmark"})
	r.MustRegister("OpenCV DNN C++", BinaryWrapper{Binary: "opencv_dnn_benchmark"})

	return r
}
